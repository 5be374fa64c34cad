// Package layout holds the domain types shared by the reconciliation stages.
package layout

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/planbiir/alignfix/internal/address"
)

// Source tells whether a segment's points come straight from the imported
// data or bridge a discontinuity.
type Source string

const (
	Imported  Source = "IMPORTED"
	Generated Source = "GENERATED"
)

// ErrInvalidSwitchLink is returned for switch links without joints or with
// joints out of address order.
var ErrInvalidSwitchLink = errors.New("invalid switch link")

// AddressPoint is a planar coordinate tagged with its track address.
type AddressPoint struct {
	Point   orb.Point
	Address address.Address
}

// ElementMetadata describes which original design element produced a
// stretch of the alignment.
type ElementMetadata struct {
	ID                int
	Range             address.Range
	SourceElement     string
	CreatedYear       int
	Geometry          orb.LineString
	FileName          string
	MeasurementMethod string
}

// WithRange returns a copy of m covering r.
func (m ElementMetadata) WithRange(r address.Range) ElementMetadata {
	m.Range = r
	return m
}

// Joint is a numbered switch joint located on the alignment.
type Joint struct {
	Number  int
	Address address.Address
}

// SwitchLink records where a switch sits on the alignment. Its range runs
// from the first joint to the last; a single joint makes a single-point link.
type SwitchLink struct {
	SwitchID string
	Joints   []Joint
	// Extent overrides the joint span. Set for single-joint links stretched
	// to the neighbouring point address.
	Extent *address.Range
}

// NewSwitchLink validates that joints are present and in address order.
func NewSwitchLink(switchID string, joints []Joint) (SwitchLink, error) {
	link := SwitchLink{SwitchID: switchID, Joints: joints}
	if err := link.Validate(); err != nil {
		return SwitchLink{}, err
	}
	return link, nil
}

func (l SwitchLink) Validate() error {
	if len(l.Joints) == 0 {
		return fmt.Errorf("%w: switch %s has no joints", ErrInvalidSwitchLink, l.SwitchID)
	}
	for i := 1; i < len(l.Joints); i++ {
		if l.Joints[i].Address.Before(l.Joints[i-1].Address) {
			return fmt.Errorf("%w: switch %s joint %d at %s is before joint %d at %s",
				ErrInvalidSwitchLink, l.SwitchID, i, l.Joints[i].Address, i-1, l.Joints[i-1].Address)
		}
	}
	return nil
}

func (l SwitchLink) Range() address.Range {
	if l.Extent != nil {
		return *l.Extent
	}
	return address.Range{Start: l.Joints[0].Address, End: l.Joints[len(l.Joints)-1].Address}
}

func (l SwitchLink) IsSinglePoint() bool {
	return l.Range().IsSinglePoint()
}

// JointAt returns the number of the joint exactly at a.
func (l SwitchLink) JointAt(a address.Address) (int, bool) {
	for _, j := range l.Joints {
		if j.Address.Equal(a) {
			return j.Number, true
		}
	}
	return 0, false
}

// NextJoint returns the first joint after a.
func (l SwitchLink) NextJoint(a address.Address) (Joint, bool) {
	for _, j := range l.Joints {
		if j.Address.After(a) {
			return j, true
		}
	}
	return Joint{}, false
}

// JointRanges returns one range per consecutive joint pair, or the single
// point range for a one-joint link.
func (l SwitchLink) JointRanges() []address.Range {
	if len(l.Joints) == 1 || l.Extent != nil {
		return []address.Range{l.Range()}
	}
	out := make([]address.Range, 0, len(l.Joints)-1)
	for i := 1; i < len(l.Joints); i++ {
		out = append(out, address.Range{Start: l.Joints[i-1].Address, End: l.Joints[i].Address})
	}
	return out
}

// SegmentMetaRange is one piece of the reconciled address span together with
// its metadata and switch attribution. Either attribution may be nil.
type SegmentMetaRange struct {
	Range      address.Range
	Metadata   *ElementMetadata
	SwitchLink *SwitchLink
}

func (r SegmentMetaRange) String() string {
	s := r.Range.String()
	if r.Metadata != nil {
		s += fmt.Sprintf(" md=%d", r.Metadata.ID)
	}
	if r.SwitchLink != nil {
		s += " switch=" + r.SwitchLink.SwitchID
	}
	return s
}

// SegmentPoint is a segment vertex. M is the distance from the segment start.
type SegmentPoint struct {
	Point   orb.Point
	M       float64
	Address address.Address
}

// Segment is a reconciled piece of alignment geometry.
type Segment struct {
	Points     []SegmentPoint
	Source     Source
	Metadata   *ElementMetadata
	SwitchLink *SwitchLink
	StartJoint *int
	EndJoint   *int
	Range      address.Range
	// Start is the distance of the first point from the alignment start.
	Start  float64
	Length float64
}

func (s Segment) Geometry() orb.LineString {
	ls := make(orb.LineString, len(s.Points))
	for i, p := range s.Points {
		ls[i] = p.Point
	}
	return ls
}

// Alignment is the raw input of one reconciliation run.
type Alignment struct {
	ID          string
	Points      []orb.Point
	Addresses   []address.Address
	Metadata    []ElementMetadata
	SwitchLinks []SwitchLink
}
