package segment

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

func addressPoints(meters ...float64) []layout.AddressPoint {
	out := make([]layout.AddressPoint, len(meters))
	for i, m := range meters {
		out[i] = layout.AddressPoint{Point: orb.Point{float64(i), float64(i)}, Address: address.New(0, m)}
	}
	return out
}

func metaRange(id int, start, end float64) layout.SegmentMetaRange {
	r := address.MustRange(address.New(0, start), address.New(0, end))
	if id == 0 {
		return layout.SegmentMetaRange{Range: r}
	}
	m := layout.ElementMetadata{ID: id, Range: r}
	return layout.SegmentMetaRange{Range: r, Metadata: &m}
}

type run struct {
	first, last int
	rng         string
	conn        bool
}

func runsOf(divided []DividedRange) []run {
	out := make([]run, len(divided))
	for i, d := range divided {
		out[i] = run{first: d.First, last: d.Last, rng: d.Range.Range.String(), conn: d.Connection}
	}
	return out
}

func rangeString(start, end float64) string {
	return address.MustRange(address.New(0, start), address.New(0, end)).String()
}

func TestDividePoints(t *testing.T) {
	points := addressPoints(0, 4, 9, 11, 15, 20, 25, 30, 31)
	ranges := []layout.SegmentMetaRange{
		metaRange(0, 0, 1),
		metaRange(1, 1, 10),
		metaRange(2, 10, 20),
		metaRange(3, 20, 30),
		metaRange(0, 30, 31),
	}

	got, err := DividePoints(points, ranges, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []run{
		{0, 1, rangeString(0, 1), false},
		{1, 3, rangeString(1, 10), false},
		{3, 5, rangeString(10, 20), false},
		{5, 7, rangeString(20, 30), false},
		{7, 8, rangeString(30, 31), false},
	}, runsOf(got))

	assert.Equal(t, points[1:4], got[1].Points)
	assert.Nil(t, got[0].Range.Metadata)
	require.NotNil(t, got[2].Range.Metadata)
	assert.Equal(t, 2, got[2].Range.Metadata.ID)
}

func TestDividePointsSkipsEmptyRanges(t *testing.T) {
	points := addressPoints(0, 1, 2, 3, 11, 12, 13)
	ranges := []layout.SegmentMetaRange{
		metaRange(1, 0, 3),
		metaRange(2, 3, 5),
		metaRange(3, 5, 8),
		metaRange(4, 8, 10),
		metaRange(9, 10, 13),
	}

	got, err := DividePoints(points, ranges, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []run{
		{0, 3, rangeString(0, 3), false},
		{3, 4, rangeString(3, 5), false},
		{4, 6, rangeString(10, 13), false},
	}, runsOf(got))
	assert.Equal(t, 9, got[2].Range.Metadata.ID)
}

func TestDividePointsSplitsAtConnection(t *testing.T) {
	points := addressPoints(0, 1, 2, 3, 4, 5)

	got, err := DividePoints(points, []layout.SegmentMetaRange{metaRange(10, 0, 5)}, []int{2}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []run{
		{0, 1, rangeString(0, 1), false},
		{1, 2, rangeString(1, 2), true},
		{2, 5, rangeString(2, 5), false},
	}, runsOf(got))
	for _, d := range got {
		assert.Equal(t, 10, d.Range.Metadata.ID, "metadata stays on every piece")
	}
}

func TestDividePointsMultipleConnections(t *testing.T) {
	points := addressPoints(0, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	got, err := DividePoints(points, []layout.SegmentMetaRange{metaRange(0, 0, 10)}, []int{2, 3, 4, 8}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []run{
		{0, 1, rangeString(0, 2), false},
		{1, 2, rangeString(2, 3), true},
		{2, 3, rangeString(3, 4), true},
		{3, 4, rangeString(4, 5), true},
		{4, 7, rangeString(5, 8), false},
		{7, 8, rangeString(8, 9), true},
		{8, 9, rangeString(9, 10), false},
	}, runsOf(got))
}

func TestDividePointsDropsRangesWithoutPointPairs(t *testing.T) {
	points := addressPoints(0, 5, 10)
	ranges := []layout.SegmentMetaRange{
		metaRange(1, 0, 0),
		metaRange(2, 0, 10),
	}

	got, err := DividePoints(points, ranges, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []run{{0, 2, rangeString(0, 10), false}}, runsOf(got))
}

func TestDividePointsErrors(t *testing.T) {
	_, err := DividePoints(nil, []layout.SegmentMetaRange{metaRange(0, 0, 1)}, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrEmptyPoints)

	_, err = DividePoints(addressPoints(0, 1), nil, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoRanges)

	gap := []layout.SegmentMetaRange{metaRange(0, 0, 2), metaRange(0, 3, 5)}
	_, err = DividePoints(addressPoints(0, 5), gap, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNotContiguous)

	short := []layout.SegmentMetaRange{metaRange(0, 0, 2)}
	_, err = DividePoints(addressPoints(0, 1, 3, 4), short, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNotCovered)
}

func TestValidateRangesLogsCoverageMismatch(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	err := ValidateRanges(address.New(0, 0), address.New(0, 10), []layout.SegmentMetaRange{metaRange(0, 1, 12)}, log)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "do not include first point")
	assert.Contains(t, buf.String(), "end after last point")
}
