package segment

import (
	"github.com/paulmach/orb/planar"

	"github.com/planbiir/alignfix/internal/layout"
)

// BuildSegments turns divided runs into segments. M values restart at zero
// in every segment and Start accumulates the lengths of the segments before
// it. Runs ending at a connection become generated segments.
func BuildSegments(divided []DividedRange) []layout.Segment {
	out := make([]layout.Segment, 0, len(divided))
	start := 0.0
	for _, d := range divided {
		seg := layout.Segment{
			Points:     make([]layout.SegmentPoint, len(d.Points)),
			Source:     layout.Imported,
			Metadata:   d.Range.Metadata,
			SwitchLink: d.Range.SwitchLink,
			Range:      d.Range.Range,
			Start:      start,
		}
		if d.Connection {
			seg.Source = layout.Generated
		}

		m := 0.0
		for i, p := range d.Points {
			if i > 0 {
				m += planar.Distance(d.Points[i-1].Point, p.Point)
			}
			seg.Points[i] = layout.SegmentPoint{Point: p.Point, M: m, Address: p.Address}
		}
		seg.Length = m

		if link := seg.SwitchLink; link != nil {
			if n, ok := link.JointAt(seg.Range.Start); ok {
				seg.StartJoint = &n
			}
			if n, ok := link.JointAt(seg.Range.End); ok {
				seg.EndJoint = &n
			}
		}

		out = append(out, seg)
		start += m
	}
	return out
}
