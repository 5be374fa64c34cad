package alignfile

import (
	"github.com/paulmach/orb"

	"github.com/planbiir/alignfix/internal/address"
)

// Document is the on-disk input: raw alignments with their metadata and
// switch links. Addresses use the KKKK+MMMM.mmm text form.
type Document struct {
	Alignments []Alignment `json:"alignments"`
}

// Alignment is one alignment record
type Alignment struct {
	ID          string       `json:"id"`
	Points      []Point      `json:"points"`
	Metadata    []Metadata   `json:"metadata,omitempty"`
	SwitchLinks []SwitchLink `json:"switchLinks,omitempty"`
}

// Point is a measured position with its address
type Point struct {
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Address address.Address `json:"address"`
}

// Metadata describes the element a stretch of the alignment was built from
type Metadata struct {
	ID                int             `json:"id"`
	Start             address.Address `json:"start"`
	End               address.Address `json:"end"`
	SourceElement     string          `json:"sourceElement,omitempty"`
	CreatedYear       int             `json:"createdYear,omitempty"`
	FileName          string          `json:"fileName,omitempty"`
	MeasurementMethod string          `json:"measurementMethod,omitempty"`
	Geometry          orb.LineString  `json:"geometry,omitempty"`
}

// SwitchLink places a switch on the alignment by its joints
type SwitchLink struct {
	SwitchID string  `json:"switchId"`
	Joints   []Joint `json:"joints"`
}

type Joint struct {
	Number  int             `json:"number"`
	Address address.Address `json:"address"`
}
