package alignfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/clean"
	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/reconcile"
)

// Format selects the result encoding.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatJSON    Format = "json"
)

// WriteResults encodes results in the given format.
func WriteResults(w io.Writer, format Format, results []*reconcile.Result) error {
	switch format {
	case FormatGeoJSON, "":
		return WriteGeoJSON(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteResultsFile creates filename and writes results to it.
func WriteResultsFile(filename string, format Format, results []*reconcile.Result) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return writeAndClose(file, func(w io.Writer) error {
		return WriteResults(w, format, results)
	})
}

// SegmentCollection builds a feature collection with one LineString
// feature per segment.
func SegmentCollection(results []*reconcile.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, res := range results {
		for i, seg := range res.Segments {
			f := geojson.NewFeature(seg.Geometry())
			f.Properties["alignment"] = res.ID
			f.Properties["index"] = i
			f.Properties["source"] = string(seg.Source)
			f.Properties["start"] = seg.Range.Start.String()
			f.Properties["end"] = seg.Range.End.String()
			f.Properties["start_m"] = seg.Start
			f.Properties["length_m"] = seg.Length
			if seg.Metadata != nil {
				f.Properties["metadata_id"] = seg.Metadata.ID
				if seg.Metadata.SourceElement != "" {
					f.Properties["source_element"] = seg.Metadata.SourceElement
				}
			}
			if seg.SwitchLink != nil {
				f.Properties["switch_id"] = seg.SwitchLink.SwitchID
			}
			if seg.StartJoint != nil {
				f.Properties["start_joint"] = *seg.StartJoint
			}
			if seg.EndJoint != nil {
				f.Properties["end_joint"] = *seg.EndJoint
			}
			fc.Append(f)
		}
	}
	return fc
}

// WriteGeoJSON writes the segments of all results as a GeoJSON
// FeatureCollection.
func WriteGeoJSON(w io.Writer, results []*reconcile.Result) error {
	data, err := SegmentCollection(results).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return nil
}

type resultRecord struct {
	ID       string             `json:"id"`
	Stats    reconcile.Stats    `json:"stats"`
	Filtered []clean.IndexRange `json:"filtered,omitempty"`
	Segments []segmentRecord    `json:"segments"`
}

type segmentRecord struct {
	Source     layout.Source   `json:"source"`
	Start      address.Address `json:"start"`
	End        address.Address `json:"end"`
	StartM     float64         `json:"start_m"`
	Length     float64         `json:"length_m"`
	MetadataID *int            `json:"metadataId,omitempty"`
	SwitchID   string          `json:"switchId,omitempty"`
	StartJoint *int            `json:"startJoint,omitempty"`
	EndJoint   *int            `json:"endJoint,omitempty"`
	Points     []pointRecord   `json:"points"`
}

type pointRecord struct {
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	M       float64         `json:"m"`
	Address address.Address `json:"address"`
}

// WriteJSON writes results as structured JSON including per-run stats.
func WriteJSON(w io.Writer, results []*reconcile.Result) error {
	out := struct {
		Alignments []resultRecord `json:"alignments"`
	}{Alignments: make([]resultRecord, len(results))}

	for i, res := range results {
		rec := resultRecord{
			ID:       res.ID,
			Stats:    res.Stats,
			Filtered: res.Filtered,
			Segments: make([]segmentRecord, len(res.Segments)),
		}
		for j, seg := range res.Segments {
			sr := segmentRecord{
				Source:     seg.Source,
				Start:      seg.Range.Start,
				End:        seg.Range.End,
				StartM:     seg.Start,
				Length:     seg.Length,
				StartJoint: seg.StartJoint,
				EndJoint:   seg.EndJoint,
				Points:     make([]pointRecord, len(seg.Points)),
			}
			if seg.Metadata != nil {
				id := seg.Metadata.ID
				sr.MetadataID = &id
			}
			if seg.SwitchLink != nil {
				sr.SwitchID = seg.SwitchLink.SwitchID
			}
			for k, p := range seg.Points {
				sr.Points[k] = pointRecord{X: p.Point[0], Y: p.Point[1], M: p.M, Address: p.Address}
			}
			rec.Segments[j] = sr
		}
		out.Alignments[i] = rec
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// CleanedDocument rebuilds a document from the points that survived
// cleaning, keeping each alignment's metadata and switch links.
func CleanedDocument(alignments []layout.Alignment, cleaned []clean.AddressPoints) *Document {
	doc := &Document{Alignments: make([]Alignment, len(alignments))}
	for i, la := range alignments {
		kept := la
		kept.Points = make([]orb.Point, len(cleaned[i].Points))
		kept.Addresses = make([]address.Address, len(cleaned[i].Points))
		for j, p := range cleaned[i].Points {
			kept.Points[j] = p.Point
			kept.Addresses[j] = p.Address
		}
		doc.Alignments[i] = FromLayout(kept)
	}
	return doc
}
