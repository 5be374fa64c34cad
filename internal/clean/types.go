package clean

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/logging"
)

// Config holds point cleaning parameters
type Config struct {
	// Resolution is the nominal spacing of the input points in meters.
	// Search windows shrink as it grows.
	Resolution int

	// Zig-zag detection
	MaxAngleChange    float64 // radians - sharper direction changes are suspect
	TightSearchMeters int     // first search window
	LooseSearchMeters int     // fallback search window

	DuplicateDistance float64 // points closer than this are duplicates

	// Connection segment detection
	ConnectionAngle      float64 // radians - minimum turn, and maximum residual of two opposite turns
	ConnectionGapMeters  float64 // steps longer than this are connections, 0 disables
	BridgeFilteredRanges bool    // mark the point after a removed zig-zag as a connection end

	LongStepMeters float64 // steps longer than this are reported

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used for 1 m resolution alignment data
func DefaultConfig() Config {
	return Config{
		Resolution:        1,
		MaxAngleChange:    math.Pi / 4,
		TightSearchMeters: 100,
		LooseSearchMeters: 10000,
		DuplicateDistance: 0.0001,
		ConnectionAngle:   math.Pi / 32,
		LongStepMeters:    5.0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Resolution <= 0 {
		c.Resolution = d.Resolution
	}
	if c.MaxAngleChange <= 0 {
		c.MaxAngleChange = d.MaxAngleChange
	}
	if c.TightSearchMeters <= 0 {
		c.TightSearchMeters = d.TightSearchMeters
	}
	if c.LooseSearchMeters <= 0 {
		c.LooseSearchMeters = d.LooseSearchMeters
	}
	if c.DuplicateDistance <= 0 {
		c.DuplicateDistance = d.DuplicateDistance
	}
	if c.ConnectionAngle <= 0 {
		c.ConnectionAngle = d.ConnectionAngle
	}
	if c.LongStepMeters <= 0 {
		c.LongStepMeters = d.LongStepMeters
	}
	if c.Logger == nil {
		c.Logger = logging.GetLogger()
	}
	return c
}

// IndexRange is an inclusive range of point indices removed from the input.
type IndexRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	// Duplicate marks single-point ranges removed as repeated positions
	// rather than as zig-zag noise.
	Duplicate bool `json:"duplicate,omitempty"`
}

func (r IndexRange) Len() int { return r.End - r.Start + 1 }

func (r IndexRange) Contains(i int) bool { return i >= r.Start && i <= r.End }

func (r IndexRange) String() string { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// Stats describes what ToAddressPoints removed and detected
type Stats struct {
	InputPoints     int  `json:"input_points"`
	KeptPoints      int  `json:"kept_points"`
	DuplicatePoints int  `json:"duplicate_points"`
	ZigzagRanges    int  `json:"zigzag_ranges"`
	ZigzagPoints    int  `json:"zigzag_points"`
	Unresolved      bool `json:"unresolved_zigzag"`
	Connections     int  `json:"connections"`
	LongSteps       int  `json:"long_steps"`
}

// AddressPoints is the cleaned point list of one alignment
type AddressPoints struct {
	Points []layout.AddressPoint
	// Connections holds indices into Points of the points that end a
	// connection segment.
	Connections []int
	Filtered    []IndexRange
	Stats       Stats
}
