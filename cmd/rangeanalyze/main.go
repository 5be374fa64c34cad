// Command rangeanalyze prints the address ranges each reconciliation stage
// produces, for debugging metadata and switch link data.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/alignfile"
	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/logging"
	"github.com/planbiir/alignfix/internal/merge"
	"github.com/planbiir/alignfix/internal/reconcile"
)

var CLI struct {
	Input     string   `arg:"" type:"existingfile" help:"Alignment document"`
	Alignment []string `short:"a" help:"Only analyze these alignment ids"`
	Tolerance float64  `default:"1" env:"ALIGNFIX_TOLERANCE" help:"Gap and overlap tolerance in meters"`
	LogLevel  string   `name:"log-level" default:"warn" enum:"debug,info,warn,error" env:"ALIGNFIX_LOG_LEVEL" help:"Log level"`
}

func main() {
	_ = godotenv.Load(".env")
	kctx := kong.Parse(&CLI, kong.Name("rangeanalyze"), kong.UsageOnError())
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.FormatText)

	doc, err := alignfile.Parse(CLI.Input)
	kctx.FatalIfErrorf(err, "parse input")
	alignments, err := doc.Layout()
	kctx.FatalIfErrorf(err, "parse input")

	cfg := reconcile.DefaultConfig()
	cfg.Merge.Tolerance = CLI.Tolerance
	cfg.Segment.Tolerance = CLI.Tolerance

	ctx, _ := logging.WithRunID(context.Background())
	for _, a := range alignments {
		if !selected(a.ID) {
			continue
		}
		res, err := reconcile.Reconcile(ctx, a, cfg)
		if err != nil {
			fmt.Printf("Alignment %s: %v\n\n", a.ID, err)
			continue
		}
		printStages(a, res)
	}
}

func selected(id string) bool {
	if len(CLI.Alignment) == 0 {
		return true
	}
	for _, want := range CLI.Alignment {
		if want == id {
			return true
		}
	}
	return false
}

func printStages(a layout.Alignment, res *reconcile.Result) {
	st := res.Stages
	fmt.Printf("Alignment %s: %d points, total %s\n", a.ID, len(a.Points), st.Total)

	if len(st.Points.Filtered) > 0 {
		fmt.Printf("  filtered point ranges: %s\n", joinRanges(st.Points.Filtered))
	}
	if len(st.Points.Connections) > 0 {
		fmt.Printf("  connection ends: %v\n", st.Points.Connections)
	}

	fmt.Printf("\n  input metadata:\n")
	printMetadata(a.Metadata)
	fmt.Printf("  adjusted metadata:\n")
	printMetadata(st.Adjusted)
	fmt.Printf("  expanded metadata:\n")
	printMetadata(st.Expanded)

	fmt.Printf("  switch link ranges:\n")
	for _, r := range merge.SwitchLinkRanges(st.Links) {
		fmt.Printf("    %s\n", r)
	}

	fmt.Printf("  segment ranges:\n")
	for _, r := range st.Ranges {
		fmt.Printf("    %s\n", r)
	}

	fmt.Printf("  segments:\n")
	for i, seg := range res.Segments {
		fmt.Printf("    #%d %s %s points=%d length=%.2fm\n", i, seg.Source, seg.Range, len(seg.Points), seg.Length)
	}
	fmt.Printf("  gaps without metadata: %s\n\n", joinAddressRanges(metadataGaps(st.Total, st.Expanded)))
}

func printMetadata(metadata []layout.ElementMetadata) {
	if len(metadata) == 0 {
		fmt.Println("    none")
	}
	for _, m := range metadata {
		fmt.Printf("    id=%d %s %s\n", m.ID, m.Range, m.SourceElement)
	}
}

// metadataGaps lists the parts of total no metadata entry covers.
func metadataGaps(total address.Range, metadata []layout.ElementMetadata) []address.Range {
	var gaps []address.Range
	at := total.Start
	for _, m := range metadata {
		if m.Range.Start.After(at) {
			gaps = append(gaps, address.Range{Start: at, End: m.Range.Start})
		}
		at = address.Max(at, m.Range.End)
	}
	if total.End.After(at) {
		gaps = append(gaps, address.Range{Start: at, End: total.End})
	}
	return gaps
}

func joinRanges[T fmt.Stringer](rs []T) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func joinAddressRanges(rs []address.Range) string {
	if len(rs) == 0 {
		return "none"
	}
	return joinRanges(rs)
}
