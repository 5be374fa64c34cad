package merge

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/logging"
)

// Config controls how metadata ranges are reconciled with the alignment and
// its switch links.
type Config struct {
	// Tolerance is the largest gap or overlap, in meters on the same
	// kilometer, that is corrected automatically. Zero means "use the default".
	Tolerance float64

	Logger *slog.Logger
}

// Stats reports what the adjustment and expansion changed so callers can
// surface it to users.
type Stats struct {
	Clipped   int `json:"clipped"`
	Dropped   int `json:"dropped"`
	Snapped   int `json:"snapped"`
	Overlaps  int `json:"unresolved_overlaps"`
	Expanded  int `json:"expanded"`
	Stretched int `json:"stretched_single_point_links"`
}

// DefaultConfig returns the recommended configuration for production use.
func DefaultConfig() Config {
	return Config{Tolerance: address.DefaultTolerance}
}

func (c Config) withDefaults() Config {
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultConfig().Tolerance
	}
	if c.Logger == nil {
		c.Logger = logging.GetLogger()
	}
	return c
}

// AdjustMetadata fits element metadata onto the alignment span [start, end].
// Entries are ordered by start and clipped to the span. An entry overlapping
// its predecessor by no more than the tolerance starts where the predecessor
// ends, and entries left empty are dropped as redundant. Larger overlaps are
// logged and kept. The first start and last end snap to the span when within
// the tolerance; larger gaps stay without metadata.
//
// Adjusting an already adjusted list returns it unchanged.
func AdjustMetadata(start, end address.Address, metadata []layout.ElementMetadata, cfg Config) ([]layout.ElementMetadata, Stats, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	stats := Stats{}

	bounds, err := address.NewRange(start, end)
	if err != nil {
		return nil, stats, fmt.Errorf("alignment span: %w", err)
	}
	for i, m := range metadata {
		if err := m.Range.Validate(); err != nil {
			return nil, stats, fmt.Errorf("metadata %d (id %d): %w", i, m.ID, err)
		}
	}

	sorted := slices.Clone(metadata)
	slices.SortStableFunc(sorted, func(a, b layout.ElementMetadata) int {
		return a.Range.Start.Compare(b.Range.Start)
	})

	out := make([]layout.ElementMetadata, 0, len(sorted))
	for _, m := range sorted {
		r, ok := m.Range.Clip(bounds)
		if !ok || !r.Start.Before(r.End) {
			log.Warn("dropping metadata outside alignment", "id", m.ID, "range", m.Range.String(), "alignment", bounds.String())
			stats.Dropped++
			continue
		}
		if r != m.Range {
			log.Warn("clipping metadata to alignment", "id", m.ID, "range", m.Range.String(), "clipped", r.String())
			stats.Clipped++
		}

		if n := len(out); n > 0 {
			prev := out[n-1].Range
			if r.Start.Before(prev.End) {
				if address.Near(r.Start, prev.End, cfg.Tolerance) {
					r.Start = prev.End
				} else {
					log.Warn("overlapping metadata", "id", m.ID, "range", r.String(),
						"previous_id", out[n-1].ID, "previous", prev.String())
					stats.Overlaps++
				}
			}
			if !r.Start.Before(r.End) {
				log.Debug("dropping redundant metadata", "id", m.ID, "range", m.Range.String())
				stats.Dropped++
				continue
			}
		}

		out = append(out, m.WithRange(r))
	}

	if len(out) == 0 {
		return out, stats, nil
	}
	first := &out[0]
	if first.Range.Start.After(start) && address.Near(start, first.Range.Start, cfg.Tolerance) {
		first.Range.Start = start
		stats.Snapped++
	}
	last := &out[len(out)-1]
	if last.Range.End.Before(end) && address.Near(last.Range.End, end, cfg.Tolerance) {
		last.Range.End = end
		stats.Snapped++
	}
	return out, stats, nil
}

// ExpandToSwitchLinks moves metadata boundaries onto the extents of the
// switch links they run into. An end inside a link, or at its start, moves
// to the link's end; an end just short of a link moves up to its start. A
// start inside a link moves back to the link's start; a start just past a
// link's end moves down to that end. Single-point links do not expand
// metadata.
//
// Entries that did not overlap before expansion do not overlap after it:
// the later entry starts where the earlier one now ends, and is dropped if
// nothing remains.
func ExpandToSwitchLinks(metadata []layout.ElementMetadata, links []layout.SwitchLink, cfg Config) ([]layout.ElementMetadata, Stats) {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	stats := Stats{}

	spans := make([]address.Range, 0, len(links))
	for _, l := range links {
		if len(l.Joints) == 0 || l.IsSinglePoint() {
			continue
		}
		spans = append(spans, l.Range())
	}

	out := make([]layout.ElementMetadata, 0, len(metadata))
	var prevOriginal address.Range
	for _, m := range metadata {
		r := m.Range
		expanded := address.Range{
			Start: expandStart(r.Start, spans, cfg.Tolerance),
			End:   expandEnd(r.End, spans, cfg.Tolerance),
		}

		if n := len(out); n > 0 {
			prev := out[n-1].Range
			if !r.Start.Before(prevOriginal.End) && expanded.Start.Before(prev.End) {
				expanded.Start = prev.End
			}
		}
		if !expanded.Start.Before(expanded.End) {
			log.Debug("dropping metadata covered by expanded neighbour", "id", m.ID, "range", r.String())
			stats.Dropped++
			continue
		}
		if expanded != r {
			log.Debug("expanding metadata to switch links", "id", m.ID, "range", r.String(), "expanded", expanded.String())
			stats.Expanded++
		}

		out = append(out, m.WithRange(expanded))
		prevOriginal = r
	}
	return out, stats
}

func expandEnd(end address.Address, spans []address.Range, tol float64) address.Address {
	for _, s := range spans {
		if end.Equal(s.Start) || (s.Start.Before(end) && end.Before(s.End)) {
			return s.End
		}
	}
	for _, s := range spans {
		if end.Before(s.Start) && address.Near(end, s.Start, tol) {
			return s.Start
		}
	}
	return end
}

func expandStart(start address.Address, spans []address.Range, tol float64) address.Address {
	for _, s := range spans {
		if s.Start.Before(start) && start.Before(s.End) {
			return s.Start
		}
	}
	for _, s := range spans {
		if start.After(s.End) && address.Near(start, s.End, tol) {
			return s.End
		}
	}
	return start
}
