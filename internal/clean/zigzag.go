package clean

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/planbiir/alignfix/internal/address"
)

var (
	// ErrUnresolvedZigzag is returned when no removal window within the
	// search limits straightens the line.
	ErrUnresolvedZigzag = errors.New("unresolved zig-zag")
	// ErrLengthMismatch is returned when points and addresses differ in count.
	ErrLengthMismatch = errors.New("points and addresses differ in length")
)

// FilterZigzag returns the index ranges to remove from points so that no
// heading change along the remaining line exceeds cfg.MaxAngleChange.
// Repeated positions are reported as single-index duplicate ranges.
func FilterZigzag(points []orb.Point, cfg Config) ([]IndexRange, error) {
	return FilteredIndices(points, nil, cfg)
}

// FilteredIndices is FilterZigzag with addresses: points sharing an address
// with their predecessor are treated as duplicates too. addresses may be nil.
func FilteredIndices(points []orb.Point, addresses []address.Address, cfg Config) ([]IndexRange, error) {
	if addresses != nil && len(addresses) != len(points) {
		return nil, fmt.Errorf("%w: %d points, %d addresses", ErrLengthMismatch, len(points), len(addresses))
	}
	cfg = cfg.withDefaults()
	f := zigzagFilter{
		points:    points,
		addresses: addresses,
		cfg:       cfg,
		tight:     max(1, cfg.TightSearchMeters/cfg.Resolution),
		loose:     max(1, cfg.LooseSearchMeters/cfg.Resolution),
	}
	return f.run()
}

type zigzagFilter struct {
	points    []orb.Point
	addresses []address.Address
	cfg       Config
	tight     int
	loose     int
}

func (f *zigzagFilter) last() int { return len(f.points) - 1 }

func (f *zigzagFilter) run() ([]IndexRange, error) {
	out := []IndexRange{}
	if len(f.points) < 2 {
		return out, nil
	}

	prev := 0
	var prevAngle float64
	hasAngle := false

	index := 1
	for index <= f.last() {
		if f.isDuplicate(prev, index) {
			out = append(out, IndexRange{Start: index, End: index, Duplicate: true})
			index++
			continue
		}

		angle := f.direction(prev, index)
		if !hasAngle || f.angleOk(prevAngle, angle) {
			prev = index
			prevAngle = angle
			hasAngle = true
			index++
			continue
		}

		r, ok := f.resolve(index, f.tight)
		if !ok {
			r, ok = f.resolve(index, f.loose)
		}
		if !ok {
			return nil, fmt.Errorf("%w: heading change at index %d", ErrUnresolvedZigzag, index)
		}
		out = append(out, r)

		// Continue from the first point after the removed range, heading
		// along the bridge that replaces it.
		before, after := r.Start-1, r.End+1
		index = r.End + 2
		if after <= f.last() {
			prev = after
		}
		hasAngle = before >= 0 && after <= f.last()
		if hasAngle {
			prevAngle = f.direction(before, after)
		}
	}
	return out, nil
}

// resolve picks the smaller of the forward and backward candidates. Forward
// wins ties.
func (f *zigzagFilter) resolve(errIndex, maxPoints int) (IndexRange, bool) {
	fwd, fwdOk := f.forward(errIndex, maxPoints)
	bwd, bwdOk := f.backward(errIndex, maxPoints)
	switch {
	case !fwdOk && !bwdOk:
		return IndexRange{}, false
	case !bwdOk:
		return fwd, true
	case !fwdOk:
		return bwd, true
	case fwd.Len() <= bwd.Len():
		return fwd, true
	default:
		return bwd, true
	}
}

// forward drops points from errIndex on until the line can continue from
// the last good point in its previous heading. Running off the end drops
// the whole tail.
func (f *zigzagFilter) forward(errIndex, maxPoints int) (IndexRange, bool) {
	if errIndex-2 < 0 {
		return IndexRange{}, false
	}
	lastGood := errIndex - 1
	heading := f.direction(errIndex-2, lastGood)

	for i := errIndex + 1; i <= errIndex+maxPoints+1; i++ {
		if i > f.last() {
			return IndexRange{Start: errIndex, End: i - 1}, true
		}
		if f.isDuplicate(lastGood, i) {
			continue
		}
		if f.isNextPointOk(lastGood, heading, i, -1) {
			return IndexRange{Start: errIndex, End: i - 1}, true
		}
	}
	return IndexRange{}, false
}

// backward walks from the error point towards the start, looking for the
// earliest point the line could have come from. Running off the start drops
// the whole head.
func (f *zigzagFilter) backward(errIndex, maxPoints int) (IndexRange, bool) {
	if errIndex+1 > f.last() {
		return IndexRange{}, false
	}
	towardsError := f.direction(errIndex+1, errIndex)

	lastOk := errIndex
	if f.isNextPointOk(errIndex, towardsError, errIndex-1, -1) {
		lastOk = errIndex - 1
	}
	heading := towardsError
	if lastOk != errIndex {
		heading = f.direction(errIndex, lastOk)
	}

	for i := lastOk - 2; i >= lastOk-maxPoints-1; i-- {
		if i < 0 {
			if lastOk-1 < 0 {
				return IndexRange{}, false
			}
			return IndexRange{Start: 0, End: lastOk - 1}, true
		}
		if f.isDuplicate(lastOk, i) {
			continue
		}
		if f.isNextPointOk(lastOk, heading, i, i-1) {
			return IndexRange{Start: i + 1, End: lastOk - 1}, true
		}
	}
	return IndexRange{}, false
}

// isNextPointOk reports whether stepping from prev to next keeps within the
// allowed heading change, and, when following >= 0, whether the step after
// next does too.
func (f *zigzagFilter) isNextPointOk(prev int, prevHeading float64, next, following int) bool {
	nextHeading := f.direction(prev, next)
	if !f.angleOk(prevHeading, nextHeading) {
		return false
	}
	if following < 0 {
		return true
	}
	return f.angleOk(nextHeading, f.direction(next, following))
}

func (f *zigzagFilter) angleOk(a, b float64) bool {
	return angleDiff(a, b) <= f.cfg.MaxAngleChange
}

func (f *zigzagFilter) direction(from, to int) float64 {
	return direction(f.points[from], f.points[to])
}

func (f *zigzagFilter) isDuplicate(a, b int) bool {
	if distance(f.points[a], f.points[b]) <= f.cfg.DuplicateDistance {
		return true
	}
	return f.addresses != nil && f.addresses[a].Equal(f.addresses[b])
}
