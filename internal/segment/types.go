// Package segment turns reconciled address ranges and a cleaned point list
// into ordered alignment segments.
package segment

import (
	"errors"
	"log/slog"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/logging"
)

var (
	ErrEmptyPoints   = errors.New("empty point list")
	ErrNoRanges      = errors.New("no segment ranges")
	ErrNotContiguous = errors.New("segment ranges not contiguous")
	ErrNotCovered    = errors.New("points not covered by segment ranges")
)

// Config controls range segmentation.
type Config struct {
	// Tolerance merges boundaries less than this many meters apart on the
	// same kilometer. Zero means "use the default".
	Tolerance float64

	// KeepKilometers disables cutting ranges at kilometer posts.
	KeepKilometers bool

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{Tolerance: address.DefaultTolerance}
}

func (c Config) withDefaults() Config {
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultConfig().Tolerance
	}
	if c.Logger == nil {
		c.Logger = logging.GetLogger()
	}
	return c
}

// DividedRange is the run of points one segment range maps onto.
type DividedRange struct {
	// Points shares its first point with the previous run and its last
	// point with the next one.
	Points []layout.AddressPoint
	Range  layout.SegmentMetaRange
	// Connection marks a run that ends at a connection index.
	Connection  bool
	First, Last int
}
