package segment

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

// ValidateRanges checks that ranges are well formed and contiguous. A
// mismatch between the ranges and the [start, end] span of the points is
// only logged: uncovered points are an error in the data, extra coverage is
// not.
func ValidateRanges(start, end address.Address, ranges []layout.SegmentMetaRange, log *slog.Logger) error {
	if len(ranges) == 0 {
		return ErrNoRanges
	}
	first, last := ranges[0].Range, ranges[len(ranges)-1].Range
	switch {
	case first.Start.After(start):
		log.Error("segment ranges do not include first point", "range", first.String(), "start", start.String())
	case first.Start.Before(start):
		log.Warn("segment ranges start before first point", "range", first.String(), "start", start.String())
	}
	switch {
	case last.End.Before(end):
		log.Error("segment ranges do not include last point", "range", last.String(), "end", end.String())
	case last.End.After(end):
		log.Warn("segment ranges end after last point", "range", last.String(), "end", end.String())
	}

	for i, r := range ranges {
		if err := r.Range.Validate(); err != nil {
			return fmt.Errorf("segment range %d: %w", i, err)
		}
		if i+1 < len(ranges) && !r.Range.End.Equal(ranges[i+1].Range.Start) {
			return fmt.Errorf("%w: range %d %s, next %s", ErrNotContiguous, i, r.Range, ranges[i+1].Range)
		}
	}
	return nil
}

// DividePoints distributes points over ranges. Each run shares its end
// point with the next run, so the resulting geometry is continuous. A run
// also ends at every connection index and at the point before it, making
// each connection a run of exactly one point pair.
//
// Ranges that receive fewer than two points produce no run. The range of a
// run cut short by a connection ends at the cutting point's address and
// the following run starts there.
func DividePoints(points []layout.AddressPoint, ranges []layout.SegmentMetaRange, connections []int, cfg Config) ([]DividedRange, error) {
	cfg = cfg.withDefaults()
	if len(points) == 0 {
		return nil, ErrEmptyPoints
	}
	last := len(points) - 1
	if err := ValidateRanges(points[0].Address, points[last].Address, ranges, cfg.Logger); err != nil {
		return nil, err
	}

	isConnection := make(map[int]bool, len(connections))
	for _, c := range connections {
		isConnection[c] = true
	}

	var out []DividedRange
	ri := 0
	from := -1
	pieceStart := ranges[0].Range.Start
	for pi, p := range points {
		current := ranges[ri]
		if from < 0 && current.Range.Contains(p.Address) {
			from = pi
			pieceStart = current.Range.Start
		}

		connection := isConnection[pi]
		natural := current.Range.IsBefore(p.Address)
		if natural || pi == last || connection || isConnection[pi+1] {
			if from >= 0 && pi > from {
				end := p.Address
				if natural || pi == last {
					end = current.Range.End
				}
				piece := current
				piece.Range = address.Range{Start: pieceStart, End: end}
				out = append(out, DividedRange{
					Points:     slices.Clone(points[from : pi+1]),
					Range:      piece,
					Connection: connection,
					First:      from,
					Last:       pi,
				})
			}
			from = pi
			if pi == last {
				from = -1
			}
			pieceStart = p.Address
		}

		for pi < last && ranges[ri].Range.IsBefore(p.Address) {
			ri++
			if ri == len(ranges) {
				return nil, fmt.Errorf("%w: point %d at %s is past the last range %s",
					ErrNotCovered, pi, p.Address, ranges[ri-1].Range)
			}
			pieceStart = ranges[ri].Range.Start
		}
	}
	return out, nil
}
