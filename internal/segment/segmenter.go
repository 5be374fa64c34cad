package segment

import (
	"fmt"
	"math"
	"slices"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

// boundaryKind orders boundary sources by how hard a constraint they are.
type boundaryKind int

const (
	fromMetadata boundaryKind = iota
	fromSwitch
	fromTotal
)

type boundary struct {
	at   address.Address
	kind boundaryKind
}

// boundaryGroup is a run of boundaries merged into rep.
type boundaryGroup struct {
	first, last address.Address
	rep         boundary
}

type mdSpan struct {
	r  address.Range
	md *layout.ElementMetadata
}

type linkSpan struct {
	r    address.Range
	link *layout.SwitchLink
}

// SegmentRanges cuts total into contiguous ranges at every metadata,
// switch link and joint boundary, attributing each range to the first
// metadata entry and the first switch link that fully contain it.
//
// Boundaries less than cfg.Tolerance apart merge into one, keeping the
// total range endpoints over switch boundaries and switch boundaries over
// metadata ones. Every single-point switch link yields its own zero-width
// range, placed in input order before the range starting at its address.
func SegmentRanges(total address.Range, metadata []layout.ElementMetadata, links []layout.SwitchLink, cfg Config) ([]layout.SegmentMetaRange, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("total range: %w", err)
	}
	for i, m := range metadata {
		if err := m.Range.Validate(); err != nil {
			return nil, fmt.Errorf("metadata %d (id %d): %w", i, m.ID, err)
		}
	}
	for i, l := range links {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("switch link %d: %w", i, err)
		}
		if err := l.Range().Validate(); err != nil {
			return nil, fmt.Errorf("switch link %d (%s): %w", i, l.SwitchID, err)
		}
	}

	// Attributions point into private copies so results never alias the
	// caller's slices.
	metadata = slices.Clone(metadata)
	links = slices.Clone(links)

	groups := mergeBoundaries(collectBoundaries(total, metadata, links), cfg.Tolerance)
	snap := func(a address.Address) address.Address {
		for _, g := range groups {
			if !a.Before(g.first) && !a.After(g.last) {
				return g.rep.at
			}
		}
		return a
	}

	var mds []mdSpan
	for i := range metadata {
		r, ok := metadata[i].Range.Clip(total)
		if !ok {
			continue
		}
		r = address.Range{Start: snap(r.Start), End: snap(r.End)}
		if r.IsSinglePoint() {
			log.Debug("metadata collapsed onto a single boundary", "id", metadata[i].ID, "range", metadata[i].Range.String())
			continue
		}
		mds = append(mds, mdSpan{r: r, md: &metadata[i]})
	}

	var spans []linkSpan
	var points []linkSpan
	for i := range links {
		for _, jr := range links[i].JointRanges() {
			r, ok := jr.Clip(total)
			if !ok {
				continue
			}
			r = address.Range{Start: snap(r.Start), End: snap(r.End)}
			if r.IsSinglePoint() {
				if links[i].IsSinglePoint() {
					points = append(points, linkSpan{r: r, link: &links[i]})
				}
				continue
			}
			spans = append(spans, linkSpan{r: r, link: &links[i]})
		}
	}

	reps := make([]address.Address, len(groups))
	for i, g := range groups {
		reps[i] = g.rep.at
	}

	var out []layout.SegmentMetaRange
	for i, at := range reps {
		for _, p := range points {
			if !p.r.Start.Equal(at) {
				continue
			}
			out = append(out, layout.SegmentMetaRange{
				Range:      p.r,
				Metadata:   metadataAt(mds, at),
				SwitchLink: p.link,
			})
		}
		if i == len(reps)-1 {
			if len(out) == 0 {
				r := address.Range{Start: at, End: at}
				out = append(out, layout.SegmentMetaRange{Range: r, Metadata: metadataAt(mds, at)})
			}
			break
		}

		r := address.Range{Start: at, End: reps[i+1]}
		sr := layout.SegmentMetaRange{Range: r}
		for _, m := range mds {
			if m.r.ContainsRange(r) {
				sr.Metadata = m.md
				break
			}
		}
		for _, s := range spans {
			if s.r.ContainsRange(r) {
				sr.SwitchLink = s.link
				break
			}
		}
		out = append(out, sr)
	}

	if cfg.KeepKilometers {
		return out, nil
	}
	return splitAtKilometers(out), nil
}

func collectBoundaries(total address.Range, metadata []layout.ElementMetadata, links []layout.SwitchLink) []boundary {
	bs := []boundary{{at: total.Start, kind: fromTotal}, {at: total.End, kind: fromTotal}}
	add := func(a address.Address, kind boundaryKind) {
		if total.Contains(a) {
			bs = append(bs, boundary{at: a, kind: kind})
		}
	}
	for _, m := range metadata {
		if r, ok := m.Range.Clip(total); ok {
			add(r.Start, fromMetadata)
			add(r.End, fromMetadata)
		}
	}
	for _, l := range links {
		for _, jr := range l.JointRanges() {
			if r, ok := jr.Clip(total); ok {
				add(r.Start, fromSwitch)
				add(r.End, fromSwitch)
			}
		}
	}
	return bs
}

// mergeBoundaries sorts boundaries and folds each run of near boundaries
// into its highest priority member. The two total endpoints never merge
// unless they are equal.
func mergeBoundaries(bs []boundary, tol float64) []boundaryGroup {
	slices.SortFunc(bs, func(a, b boundary) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return int(b.kind) - int(a.kind)
	})

	var groups []boundaryGroup
	for _, b := range bs {
		if n := len(groups); n > 0 {
			g := &groups[n-1]
			bothTotal := b.kind == fromTotal && g.rep.kind == fromTotal
			if b.at.Equal(g.rep.at) || (!bothTotal && closerThan(g.rep.at, b.at, tol)) {
				g.last = b.at
				if b.kind > g.rep.kind {
					g.rep = b
				}
				continue
			}
		}
		groups = append(groups, boundaryGroup{first: b.at, last: b.at, rep: b})
	}
	return groups
}

func closerThan(a, b address.Address, tol float64) bool {
	d, ok := address.Distance(a, b)
	return ok && math.Abs(d) < tol
}

// metadataAt finds the metadata for a zero-width range: the entry
// including at, or failing that the one ending there.
func metadataAt(mds []mdSpan, at address.Address) *layout.ElementMetadata {
	for _, m := range mds {
		if m.r.Includes(at) {
			return m.md
		}
	}
	for _, m := range mds {
		if m.r.Contains(at) {
			return m.md
		}
	}
	return nil
}

func splitAtKilometers(ranges []layout.SegmentMetaRange) []layout.SegmentMetaRange {
	out := make([]layout.SegmentMetaRange, 0, len(ranges))
	for _, r := range ranges {
		for _, piece := range address.SplitAtKilometers(r.Range) {
			out = append(out, layout.SegmentMetaRange{
				Range:      piece,
				Metadata:   r.Metadata,
				SwitchLink: r.SwitchLink,
			})
		}
	}
	return out
}
