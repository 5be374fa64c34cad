package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/alignfix/internal/address"
)

func TestSwitchLinkJoints(t *testing.T) {
	link, err := NewSwitchLink("sw-2", []Joint{
		{Number: 1, Address: address.New(3, 999.9)},
		{Number: 5, Address: address.New(4, 111.1)},
		{Number: 2, Address: address.New(4, 555.5)},
	})
	require.NoError(t, err)

	assert.Equal(t, address.MustRange(address.New(3, 999.9), address.New(4, 555.5)), link.Range())
	assert.False(t, link.IsSinglePoint())

	n, ok := link.JointAt(address.New(4, 111.1))
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	_, ok = link.JointAt(address.New(4, 111))
	assert.False(t, ok)

	next, ok := link.NextJoint(address.New(4, 111.1))
	require.True(t, ok)
	assert.Equal(t, 2, next.Number)
	_, ok = link.NextJoint(address.New(4, 555.5))
	assert.False(t, ok)

	assert.Equal(t, []address.Range{
		address.MustRange(address.New(3, 999.9), address.New(4, 111.1)),
		address.MustRange(address.New(4, 111.1), address.New(4, 555.5)),
	}, link.JointRanges())
}

func TestSingleJointLink(t *testing.T) {
	link, err := NewSwitchLink("sw-1", []Joint{{Number: 1, Address: address.New(1, 0)}})
	require.NoError(t, err)
	assert.True(t, link.IsSinglePoint())
	assert.Len(t, link.JointRanges(), 1)
}

func TestSwitchLinkValidation(t *testing.T) {
	_, err := NewSwitchLink("empty", nil)
	assert.ErrorIs(t, err, ErrInvalidSwitchLink)

	_, err = NewSwitchLink("reversed", []Joint{
		{Number: 1, Address: address.New(1, 10)},
		{Number: 2, Address: address.New(1, 5)},
	})
	assert.ErrorIs(t, err, ErrInvalidSwitchLink)
}
