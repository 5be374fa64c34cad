package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

func TestMetadataGaps(t *testing.T) {
	r := func(s, e float64) address.Range { return address.MustRange(address.New(0, s), address.New(0, e)) }
	metadata := []layout.ElementMetadata{{ID: 1, Range: r(5, 10)}, {ID: 2, Range: r(8, 20)}, {ID: 3, Range: r(30, 40)}}

	assert.Equal(t, []address.Range{r(0, 5), r(20, 30), r(40, 50)}, metadataGaps(r(0, 50), metadata))
	assert.Equal(t, []address.Range{r(0, 50)}, metadataGaps(r(0, 50), nil))
	assert.Empty(t, metadataGaps(r(0, 50), []layout.ElementMetadata{{Range: r(0, 50)}}))
}

func TestSelected(t *testing.T) {
	CLI.Alignment = nil
	assert.True(t, selected("any"))
	CLI.Alignment = []string{"a", "b"}
	defer func() { CLI.Alignment = nil }()
	assert.True(t, selected("b"))
	assert.False(t, selected("c"))
}
