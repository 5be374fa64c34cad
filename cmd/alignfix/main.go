// Command alignfix reconciles railway alignment geometry with its element
// metadata and switch links.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/planbiir/alignfix/internal/alignfile"
	"github.com/planbiir/alignfix/internal/clean"
	"github.com/planbiir/alignfix/internal/logging"
	"github.com/planbiir/alignfix/internal/reconcile"
)

const version = "1.0.0"

var CLI struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"ALIGNFIX_LOG_LEVEL" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" env:"ALIGNFIX_LOG_FORMAT" help:"Log format"`

	Reconcile ReconcileCmd `cmd:"" help:"Reconcile alignments into segments"`
	Zigzag    ZigzagCmd    `cmd:"" help:"Report zig-zag ranges and connection segments"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// CleanFlags configure point cleaning.
type CleanFlags struct {
	Resolution     int     `default:"1" env:"ALIGNFIX_RESOLUTION" help:"Nominal point spacing in meters"`
	MaxAngle       float64 `name:"max-angle" default:"45" env:"ALIGNFIX_MAX_ANGLE" help:"Largest heading change between steps, in degrees"`
	GapConnections float64 `name:"gap-connections" env:"ALIGNFIX_GAP_CONNECTIONS" help:"Steps longer than this many meters become connection segments (0 disables)"`
	Bridge         bool    `env:"ALIGNFIX_BRIDGE" help:"Make bridges over removed zig-zags connection segments"`
}

func (f CleanFlags) config() clean.Config {
	cfg := clean.DefaultConfig()
	cfg.Resolution = f.Resolution
	cfg.MaxAngleChange = f.MaxAngle * math.Pi / 180
	cfg.ConnectionGapMeters = f.GapConnections
	cfg.BridgeFilteredRanges = f.Bridge
	return cfg
}

// ReconcileCmd runs the full pipeline and writes the segments.
type ReconcileCmd struct {
	Input  string `short:"i" required:"" type:"existingfile" help:"Input alignment document"`
	Output string `short:"o" type:"path" help:"Output file (default: <input>_segments.<format>)"`
	Format string `default:"geojson" enum:"geojson,json" env:"ALIGNFIX_FORMAT" help:"Output format"`

	Clean CleanFlags `embed:""`

	Tolerance            float64 `default:"1" env:"ALIGNFIX_TOLERANCE" help:"Gaps and overlaps up to this many meters are corrected"`
	KeepKilometers       bool    `name:"keep-kilometers" help:"Do not cut segments at kilometer posts"`
	KeepSinglePointLinks bool    `name:"keep-single-point-links" help:"Do not stretch single-joint switch links to the next point"`
	Parallel             int     `default:"0" env:"ALIGNFIX_PARALLEL" help:"Alignments processed concurrently (0 = one per CPU)"`

	DryRun    bool `name:"dry-run" help:"Show statistics without writing output file"`
	Stats     bool `help:"Show detailed statistics"`
	StatsJSON bool `name:"stats-json" help:"Output statistics as JSON"`
}

func (c *ReconcileCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, runID := logging.WithRunID(ctx)
	log := logging.LoggerFromContext(ctx)

	output := c.Output
	if output == "" {
		ext := filepath.Ext(c.Input)
		output = strings.TrimSuffix(c.Input, ext) + "_segments." + c.Format
	}

	fmt.Printf("📖 Reading alignments: %s\n", c.Input)
	doc, err := alignfile.Parse(c.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Input, err)
	}
	alignments, err := doc.Layout()
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Input, err)
	}

	cfg := reconcile.DefaultConfig()
	cfg.Clean = c.Clean.config()
	cfg.Merge.Tolerance = c.Tolerance
	cfg.Segment.Tolerance = c.Tolerance
	cfg.Segment.KeepKilometers = c.KeepKilometers
	cfg.KeepSinglePointLinks = c.KeepSinglePointLinks

	started := time.Now()
	results, err := reconcile.Batch(ctx, alignments, cfg, c.Parallel)
	if err != nil {
		return err
	}
	log.Info("reconciled alignments", "alignments", len(results), "elapsed", time.Since(started))

	if c.Stats || c.StatsJSON || c.DryRun {
		if c.StatsJSON {
			stats := make(map[string]reconcile.Stats, len(results))
			for _, res := range results {
				stats[res.ID] = res.Stats
			}
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling stats: %w", err)
			}
			fmt.Println(string(data))
		} else {
			for _, res := range results {
				printStats(res)
			}
		}
	}

	if c.DryRun {
		fmt.Printf("🔍 Dry run completed - no files written\n")
		return nil
	}

	fmt.Printf("💾 Writing segments: %s\n", output)
	if err := alignfile.WriteResultsFile(output, alignfile.Format(c.Format), results); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	segments := 0
	for _, res := range results {
		segments += len(res.Segments)
	}
	fmt.Printf("✅ Reconciled %d alignments into %d segments (run %s)\n", len(results), segments, runID)
	return nil
}

// ZigzagCmd reports what point cleaning removes, optionally writing the
// cleaned document.
type ZigzagCmd struct {
	Input  string `short:"i" required:"" type:"existingfile" help:"Input alignment document"`
	Output string `short:"o" type:"path" help:"Write the cleaned alignment document here"`

	Clean CleanFlags `embed:""`
}

func (c *ZigzagCmd) Run() error {
	doc, err := alignfile.Parse(c.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Input, err)
	}
	alignments, err := doc.Layout()
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Input, err)
	}

	cfg := c.Clean.config()
	cleaned := make([]clean.AddressPoints, len(alignments))
	for i, a := range alignments {
		points, err := clean.ToAddressPoints(a.ID, a.Points, a.Addresses, cfg)
		if err != nil {
			return fmt.Errorf("alignment %s: %w", a.ID, err)
		}
		cleaned[i] = points

		fmt.Printf("📍 %s: %d → %d points\n", a.ID, points.Stats.InputPoints, points.Stats.KeptPoints)
		for _, r := range points.Filtered {
			kind := "zig-zag"
			if r.Duplicate {
				kind = "duplicate"
			}
			fmt.Printf("   • removed %s %s (%s..%s)\n", kind, r, a.Addresses[r.Start], a.Addresses[r.End])
		}
		for _, end := range points.Connections {
			if end == 0 {
				continue
			}
			fmt.Printf("   • connection %s..%s\n", points.Points[end-1].Address, points.Points[end].Address)
		}
		if points.Stats.Unresolved {
			fmt.Printf("   ⚠️  zig-zag could not be resolved, points kept as is\n")
		}
	}

	if c.Output == "" {
		return nil
	}
	fmt.Printf("💾 Writing cleaned alignments: %s\n", c.Output)
	return alignfile.CleanedDocument(alignments, cleaned).Write(c.Output)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("alignfix v%s - railway alignment reconciliation\n", version)
	return nil
}

func printStats(res *reconcile.Result) {
	s := res.Stats
	fmt.Printf("\n📊 %s\n", res.ID)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("📍 Points: %d → %d (%d duplicates, %d zig-zag points in %d ranges)\n",
		s.InputPoints, s.KeptPoints, s.DuplicatePoints, s.FilteredPoints, s.FilteredRanges)
	if s.Unresolved {
		fmt.Printf("⚠️  Zig-zag unresolved, filtering skipped\n")
	}
	fmt.Printf("🔀 Connections: %d, long steps: %d\n", s.Connections, s.LongSteps)
	fmt.Printf("🗂  Metadata: %d clipped, %d dropped, %d snapped, %d expanded, %d overlaps kept\n",
		s.Metadata.Clipped, s.Metadata.Dropped, s.Metadata.Snapped, s.Metadata.Expanded, s.Metadata.Overlaps)
	fmt.Printf("🔧 Single-point switch links stretched: %d\n", s.Metadata.Stretched)
	fmt.Printf("✂️  Ranges: %d (%d without point pairs)\n", s.Ranges, s.DroppedRanges)
	fmt.Printf("🧩 Segments: %d imported, %d generated\n", s.ImportedSegments, s.GeneratedSegments)
	fmt.Printf("📏 Length: %.1f m (mean %.1f m, max %.1f m)\n", s.TotalLength, s.MeanSegmentLength, s.MaxSegmentLength)
	fmt.Printf("⏱️  Processing Time: %v\n", s.ProcessingTime)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

func main() {
	_ = godotenv.Load(".env")

	ctx := kong.Parse(&CLI,
		kong.Name("alignfix"),
		kong.Description("Reconcile railway alignment geometry with element metadata and switch links"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
