package address

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a range would start after it ends.
var ErrInvalidRange = errors.New("invalid range")

// Range is a closed interval of addresses. Start == End is a valid
// single-point range.
type Range struct {
	Start Address `json:"start"`
	End   Address `json:"end"`
}

// NewRange validates start <= end.
func NewRange(start, end Address) (Range, error) {
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// MustRange is like NewRange but panics on error.
func MustRange(start, end Address) Range {
	r, err := NewRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate checks a range built without NewRange.
func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

func (r Range) IsSinglePoint() bool { return r.Start.Equal(r.End) }

// Contains reports whether a lies in [Start, End].
func (r Range) Contains(a Address) bool {
	return !a.Before(r.Start) && !a.After(r.End)
}

// Includes reports whether a lies in [Start, End).
func (r Range) Includes(a Address) bool {
	return !a.Before(r.Start) && a.Before(r.End)
}

// IsBefore reports whether the whole range lies at or before a.
func (r Range) IsBefore(a Address) bool {
	return !a.Before(r.End)
}

// ContainsRange reports whether o lies entirely within r.
func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

// Overlaps reports whether r and o share more than a single address.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Clip returns r limited to bounds. ok is false when nothing of r remains.
func (r Range) Clip(bounds Range) (Range, bool) {
	start := Max(r.Start, bounds.Start)
	end := Min(r.End, bounds.End)
	if start.After(end) {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// SplitAtKilometers cuts r at every kilometer start strictly inside it. A
// range ending exactly at a kilometer start is not cut.
func SplitAtKilometers(r Range) []Range {
	var out []Range
	start := r.Start
	for km := r.Start.Km.Number + 1; km <= r.End.Km.Number; km++ {
		cut := New(km, 0)
		if !cut.After(start) || !cut.Before(r.End) {
			continue
		}
		out = append(out, Range{Start: start, End: cut})
		start = cut
	}
	return append(out, Range{Start: start, End: r.End})
}
