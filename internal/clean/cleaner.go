package clean

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

var (
	ErrTooFewPoints       = errors.New("fewer than 2 points")
	ErrAddressOrder       = errors.New("addresses not increasing")
	ErrDuplicatePositions = errors.New("duplicate point positions")
)

// ToAddressPoints pairs points with their addresses, drops duplicate and
// zig-zag points, and finds the connection segments of the remaining line.
//
// A connection is a single point pair whose turns in and out are both
// sharper than cfg.ConnectionAngle and cancel each other out, the shape a
// lateral jump in the source data leaves behind. Connections are reported by
// the index of the point that ends them.
func ToAddressPoints(id string, points []orb.Point, addresses []address.Address, cfg Config) (AddressPoints, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	if len(points) != len(addresses) {
		return AddressPoints{}, fmt.Errorf("alignment %s: %w: %d points, %d addresses",
			id, ErrLengthMismatch, len(points), len(addresses))
	}
	if len(points) < 2 {
		return AddressPoints{}, fmt.Errorf("alignment %s: %w: got %d", id, ErrTooFewPoints, len(points))
	}
	if addresses[0].After(addresses[len(addresses)-1]) {
		return AddressPoints{}, fmt.Errorf("alignment %s: %w: first %s is after last %s",
			id, ErrAddressOrder, addresses[0], addresses[len(addresses)-1])
	}

	stats := Stats{InputPoints: len(points)}

	filtered, err := FilteredIndices(points, addresses, cfg)
	if err != nil {
		// Keep every point rather than fail the alignment.
		log.Error("can't fix convoluted line", "alignment", id, "error", err)
		filtered = nil
		stats.Unresolved = true
	}
	removed := make([]bool, len(points))
	zigzagEnds := make(map[int]bool)
	for _, r := range filtered {
		for i := r.Start; i <= r.End; i++ {
			removed[i] = true
		}
		if r.Duplicate {
			stats.DuplicatePoints++
			continue
		}
		stats.ZigzagRanges++
		stats.ZigzagPoints += r.Len()
		zigzagEnds[r.End+1] = true
	}
	if stats.ZigzagRanges > 0 {
		log.Warn("filtering out points due to rough turns",
			"alignment", id,
			"total", len(points),
			"filtered", stats.ZigzagPoints,
			"ranges", fmt.Sprint(filtered))
	}

	out := make([]layout.AddressPoint, 0, len(points))
	var connections []int
	var longSteps []int

	var lastIndex = -1
	var lastDirection, lastAngle float64
	hasDirection := false

	for i, p := range points {
		if removed[i] {
			continue
		}
		outputIndex := len(out)

		if lastIndex >= 0 {
			last := points[lastIndex]
			if !addresses[i].After(addresses[lastIndex]) {
				return AddressPoints{}, fmt.Errorf("alignment %s: %w at index %d: previous %s, next %s",
					id, ErrAddressOrder, i, addresses[lastIndex], addresses[i])
			}
			if last.Equal(p) {
				return AddressPoints{}, fmt.Errorf("alignment %s: %w at index %d: %v",
					id, ErrDuplicatePositions, i, p)
			}

			step := distance(last, p)
			if step > cfg.LongStepMeters {
				longSteps = append(longSteps, i)
			}

			heading := direction(last, p)
			connection := false
			if hasDirection {
				angle := relativeAngle(lastDirection, heading)
				// A lone chicane across one point pair is a capture artifact,
				// not a physical turn. The first pair is never one.
				if outputIndex > 2 &&
					math.Abs(lastAngle) > cfg.ConnectionAngle &&
					math.Abs(angle) > cfg.ConnectionAngle &&
					math.Abs(lastAngle+angle) < cfg.ConnectionAngle {
					connections = appendUnique(connections, outputIndex-1)
				}
				lastAngle = angle
			}
			if cfg.ConnectionGapMeters > 0 && step > cfg.ConnectionGapMeters {
				connection = true
			}
			if cfg.BridgeFilteredRanges && zigzagEnds[i] && outputIndex > 1 {
				connection = true
			}
			if connection {
				connections = appendUnique(connections, outputIndex)
			}
			lastDirection = heading
			hasDirection = true
		}

		out = append(out, layout.AddressPoint{Point: p, Address: addresses[i]})
		lastIndex = i
	}

	if len(longSteps) > 0 {
		log.Warn("long steps between points",
			"alignment", id,
			"count", len(longSteps),
			"threshold_m", cfg.LongStepMeters,
			"indices", fmt.Sprint(longSteps))
	}

	stats.KeptPoints = len(out)
	stats.Connections = len(connections)
	stats.LongSteps = len(longSteps)

	return AddressPoints{
		Points:      out,
		Connections: connections,
		Filtered:    filtered,
		Stats:       stats,
	}, nil
}

// appendUnique appends i unless it is already the last element. Connection
// indices are produced in ascending order.
func appendUnique(s []int, i int) []int {
	if n := len(s); n > 0 && s[n-1] >= i {
		return s
	}
	return append(s, i)
}
