package reconcile

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/merge"
)

// Stats summarizes one reconciliation run.
type Stats struct {
	InputPoints     int  `json:"input_points"`
	KeptPoints      int  `json:"kept_points"`
	DuplicatePoints int  `json:"duplicate_points"`
	FilteredRanges  int  `json:"filtered_ranges"`
	FilteredPoints  int  `json:"filtered_points"`
	Unresolved      bool `json:"unresolved_zigzag"`
	Connections     int  `json:"connections"`
	LongSteps       int  `json:"long_steps"`

	Metadata merge.Stats `json:"metadata"`

	Ranges            int `json:"ranges"`
	DroppedRanges     int `json:"dropped_ranges"`
	Segments          int `json:"segments"`
	ImportedSegments  int `json:"imported_segments"`
	GeneratedSegments int `json:"generated_segments"`

	TotalLength       float64 `json:"total_length_m"`
	MeanSegmentLength float64 `json:"mean_segment_length_m"`
	MaxSegmentLength  float64 `json:"max_segment_length_m"`

	ProcessingTime time.Duration `json:"processing_time_ns"`
}

func collectStats(res *Result, adjust, expand, stretch merge.Stats) Stats {
	cs := res.Stages.Points.Stats
	s := Stats{
		InputPoints:     cs.InputPoints,
		KeptPoints:      cs.KeptPoints,
		DuplicatePoints: cs.DuplicatePoints,
		FilteredRanges:  cs.ZigzagRanges,
		FilteredPoints:  cs.ZigzagPoints,
		Unresolved:      cs.Unresolved,
		Connections:     cs.Connections,
		LongSteps:       cs.LongSteps,
		Metadata:        addMergeStats(adjust, expand, stretch),
		Ranges:          len(res.Stages.Ranges),
		Segments:        len(res.Segments),
	}

	for _, r := range res.Stages.Ranges {
		used := false
		for _, d := range res.Stages.Divided {
			if r.Range.ContainsRange(d.Range.Range) {
				used = true
				break
			}
		}
		if !used {
			s.DroppedRanges++
		}
	}

	lengths := make([]float64, len(res.Segments))
	for i, seg := range res.Segments {
		lengths[i] = seg.Length
		if seg.Source == layout.Generated {
			s.GeneratedSegments++
		} else {
			s.ImportedSegments++
		}
	}
	if len(lengths) > 0 {
		s.TotalLength = floats.Sum(lengths)
		s.MeanSegmentLength = stat.Mean(lengths, nil)
		s.MaxSegmentLength = floats.Max(lengths)
	}
	return s
}

func addMergeStats(all ...merge.Stats) merge.Stats {
	var out merge.Stats
	for _, s := range all {
		out.Clipped += s.Clipped
		out.Dropped += s.Dropped
		out.Snapped += s.Snapped
		out.Overlaps += s.Overlaps
		out.Expanded += s.Expanded
		out.Stretched += s.Stretched
	}
	return out
}
