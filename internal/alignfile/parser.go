// Package alignfile reads alignment input documents and writes
// reconciliation results.
package alignfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

var ErrNoAlignments = errors.New("document has no alignments")

// Parse reads and decodes an alignment document
func Parse(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader decodes an alignment document from an io.Reader
func ParseReader(r io.Reader) (*Document, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse alignment document: %w", err)
	}
	if len(doc.Alignments) == 0 {
		return nil, ErrNoAlignments
	}
	return &doc, nil
}

// Write saves the document to a file
func (d *Document) Write(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return writeAndClose(file, d.WriteToWriter)
}

// writeAndClose runs write against w and closes it. The close error is
// returned when write itself succeeded, so a failed flush is not lost.
func writeAndClose(w io.WriteCloser, write func(io.Writer) error) error {
	err := write(w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
	}
	return err
}

// WriteToWriter encodes the document as indented JSON
func (d *Document) WriteToWriter(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode alignment document: %w", err)
	}
	return nil
}

// Layout converts the records into validated domain alignments.
func (d *Document) Layout() ([]layout.Alignment, error) {
	out := make([]layout.Alignment, len(d.Alignments))
	for i, a := range d.Alignments {
		la, err := a.Layout()
		if err != nil {
			return nil, fmt.Errorf("alignment %d (%s): %w", i, a.ID, err)
		}
		out[i] = la
	}
	return out, nil
}

func (a Alignment) Layout() (layout.Alignment, error) {
	la := layout.Alignment{
		ID:        a.ID,
		Points:    make([]orb.Point, len(a.Points)),
		Addresses: make([]address.Address, len(a.Points)),
	}
	for i, p := range a.Points {
		la.Points[i] = orb.Point{p.X, p.Y}
		la.Addresses[i] = p.Address
	}

	for i, m := range a.Metadata {
		r, err := address.NewRange(m.Start, m.End)
		if err != nil {
			return layout.Alignment{}, fmt.Errorf("metadata %d (id %d): %w", i, m.ID, err)
		}
		la.Metadata = append(la.Metadata, layout.ElementMetadata{
			ID:                m.ID,
			Range:             r,
			SourceElement:     m.SourceElement,
			CreatedYear:       m.CreatedYear,
			Geometry:          m.Geometry,
			FileName:          m.FileName,
			MeasurementMethod: m.MeasurementMethod,
		})
	}

	for i, sl := range a.SwitchLinks {
		joints := make([]layout.Joint, len(sl.Joints))
		for j, jt := range sl.Joints {
			joints[j] = layout.Joint{Number: jt.Number, Address: jt.Address}
		}
		link, err := layout.NewSwitchLink(sl.SwitchID, joints)
		if err != nil {
			return layout.Alignment{}, fmt.Errorf("switch link %d: %w", i, err)
		}
		la.SwitchLinks = append(la.SwitchLinks, link)
	}
	return la, nil
}

// FromLayout builds the record for a domain alignment. Points and
// addresses are paired by index.
func FromLayout(la layout.Alignment) Alignment {
	a := Alignment{ID: la.ID, Points: make([]Point, len(la.Points))}
	for i, p := range la.Points {
		a.Points[i] = Point{X: p[0], Y: p[1]}
		if i < len(la.Addresses) {
			a.Points[i].Address = la.Addresses[i]
		}
	}
	for _, m := range la.Metadata {
		a.Metadata = append(a.Metadata, Metadata{
			ID:                m.ID,
			Start:             m.Range.Start,
			End:               m.Range.End,
			SourceElement:     m.SourceElement,
			CreatedYear:       m.CreatedYear,
			FileName:          m.FileName,
			MeasurementMethod: m.MeasurementMethod,
			Geometry:          m.Geometry,
		})
	}
	for _, l := range la.SwitchLinks {
		sl := SwitchLink{SwitchID: l.SwitchID, Joints: make([]Joint, len(l.Joints))}
		for j, jt := range l.Joints {
			sl.Joints[j] = Joint{Number: jt.Number, Address: jt.Address}
		}
		a.SwitchLinks = append(a.SwitchLinks, sl)
	}
	return a
}
