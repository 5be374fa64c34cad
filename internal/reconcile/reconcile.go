// Package reconcile runs the whole alignment reconciliation: point
// cleaning, metadata adjustment, switch link expansion, segmentation and
// segment building.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/clean"
	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/logging"
	"github.com/planbiir/alignfix/internal/merge"
	"github.com/planbiir/alignfix/internal/segment"
)

var ErrNoPoints = errors.New("alignment has no points")

// Config bundles the stage configurations.
type Config struct {
	Clean   clean.Config
	Merge   merge.Config
	Segment segment.Config

	// KeepSinglePointLinks skips stretching single-joint switch links.
	// Such links then end up as zero-width ranges that no points divide
	// into.
	KeepSinglePointLinks bool
}

func DefaultConfig() Config {
	return Config{
		Clean:   clean.DefaultConfig(),
		Merge:   merge.DefaultConfig(),
		Segment: segment.DefaultConfig(),
	}
}

// Stages holds the intermediate results of a run.
type Stages struct {
	Points   clean.AddressPoints
	Total    address.Range
	Adjusted []layout.ElementMetadata
	Expanded []layout.ElementMetadata
	Links    []layout.SwitchLink
	Ranges   []layout.SegmentMetaRange
	Divided  []segment.DividedRange
}

// Result is the reconciled alignment.
type Result struct {
	ID       string             `json:"id"`
	Segments []layout.Segment   `json:"segments"`
	Filtered []clean.IndexRange `json:"filtered"`
	Stats    Stats              `json:"stats"`
	Stages   Stages             `json:"-"`
}

// Reconcile turns one raw alignment into segments. Data inconsistencies
// are logged and repaired where possible; only broken input contracts
// return an error.
func Reconcile(ctx context.Context, alignment layout.Alignment, cfg Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	ctx = logging.WithAlignment(ctx, alignment.ID)
	log := logging.LoggerFromContext(ctx)
	cfg.Clean.Logger = orDefault(cfg.Clean.Logger, log)
	cfg.Merge.Logger = orDefault(cfg.Merge.Logger, log)
	cfg.Segment.Logger = orDefault(cfg.Segment.Logger, log)

	if len(alignment.Points) == 0 {
		return nil, fmt.Errorf("alignment %s: %w", alignment.ID, ErrNoPoints)
	}

	res := &Result{ID: alignment.ID}
	st := &res.Stages

	points, err := clean.ToAddressPoints(alignment.ID, alignment.Points, alignment.Addresses, cfg.Clean)
	if err != nil {
		return nil, fmt.Errorf("alignment %s: clean points: %w", alignment.ID, err)
	}
	st.Points = points
	res.Filtered = points.Filtered

	first, last := points.Points[0].Address, points.Points[len(points.Points)-1].Address
	st.Total = address.Range{Start: first, End: last}

	adjusted, adjustStats, err := merge.AdjustMetadata(first, last, alignment.Metadata, cfg.Merge)
	if err != nil {
		return nil, fmt.Errorf("alignment %s: adjust metadata: %w", alignment.ID, err)
	}
	st.Adjusted = adjusted

	expanded, expandStats := merge.ExpandToSwitchLinks(adjusted, alignment.SwitchLinks, cfg.Merge)
	st.Expanded = expanded

	links := alignment.SwitchLinks
	var stretchStats merge.Stats
	if !cfg.KeepSinglePointLinks {
		addrs := make([]address.Address, len(points.Points))
		for i, p := range points.Points {
			addrs[i] = p.Address
		}
		links, stretchStats = merge.StretchSinglePointLinks(links, addrs)
	}
	st.Links = links

	ranges, err := segment.SegmentRanges(st.Total, expanded, links, cfg.Segment)
	if err != nil {
		return nil, fmt.Errorf("alignment %s: segment ranges: %w", alignment.ID, err)
	}
	st.Ranges = ranges

	divided, err := segment.DividePoints(points.Points, ranges, points.Connections, cfg.Segment)
	if err != nil {
		return nil, fmt.Errorf("alignment %s: divide points: %w", alignment.ID, err)
	}
	st.Divided = divided

	res.Segments = segment.BuildSegments(divided)
	res.Stats = collectStats(res, adjustStats, expandStats, stretchStats)
	res.Stats.ProcessingTime = time.Since(started)

	log.Debug("alignment reconciled",
		"segments", len(res.Segments),
		"filtered_points", res.Stats.FilteredPoints,
		"connections", res.Stats.Connections,
		"length", res.Stats.TotalLength)
	return res, nil
}

func orDefault(l, fallback *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return fallback
}
