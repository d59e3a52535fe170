// meshtool is a CLI utility for converting between unified mesh documents
// and game-native submesh sets.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Grimrukh/meshkit/internal/config"
	"github.com/Grimrukh/meshkit/internal/interchange"
	"github.com/Grimrukh/meshkit/internal/logger"
	"github.com/Grimrukh/meshkit/pkg/mesh"
	"github.com/Grimrukh/meshkit/pkg/skeleton"
	"github.com/Grimrukh/meshkit/pkg/transcode"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		cmdInfo(args[1:])
	case "split":
		cmdSplit(cfg, args[1:])
	case "merge":
		cmdMerge(cfg, args[1:])
	case "roundtrip":
		cmdRoundtrip(cfg, args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - unified mesh / native submesh transcoder

Usage:
  meshtool [flags] <command> [args]

Commands:
  info <doc.json>                 Show document statistics
  split <doc.json> [out.json]     Split a unified mesh into native submeshes
  merge <doc.json> [out.json]     Merge native submeshes into a unified mesh
  roundtrip <doc.json>            Split then merge, reporting drift

Flags:
  -config <path>     Config file (default ./meshtool.yaml)
  -debug             Enable debug logging
  -max-bones <n>     Bone palette ceiling per submesh
  -max-verts <n>     Vertex ceiling per submesh (0 = unlimited)
  -threshold <t>     Normal/tangent dot threshold for vertex sharing
  -no-weld           Concatenate instead of welding on merge`)
}

// splitOptions maps config values onto splitter options.
func splitOptions(cfg *config.Config) transcode.Options {
	opts := transcode.DefaultOptions()
	opts.NormalTangentDotThreshold = cfg.Split.NormalTangentDotThreshold
	opts.MaxSubmeshVertexCount = cfg.Split.MaxSubmeshVertexCount
	opts.CorrectTangentSigns = cfg.Split.CorrectTangentSigns
	if cfg.Split.OnMissingLayer == "zero_fill" {
		opts.OnMissingLayer = transcode.MissingLayerZeroFill
	}
	return opts
}

// applyConventions performs the configured coordinate-system fixups on a
// freshly loaded unified mesh.
func applyConventions(cfg *config.Config, m *mesh.Mesh) {
	if cfg.Convert.SwapAxis {
		m.SwapAxisConvention(true, true)
	}
	if cfg.Convert.InvertU || cfg.Convert.InvertV {
		m.InvertUV(cfg.Convert.InvertU, cfg.Convert.InvertV)
	}
	m.NormalizeNormals()
}

func loadDocument(path string) *interchange.Document {
	doc, err := interchange.Load(path)
	if err != nil {
		logger.Fatal("loading document", zap.Error(err))
	}
	return doc
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <doc.json>")
		os.Exit(1)
	}
	doc := loadDocument(args[0])

	fmt.Printf("Document: %s\n", args[0])
	fmt.Printf("Bones:    %d\n", len(doc.Skeleton))
	if doc.Mesh != nil {
		fmt.Printf("Unified mesh: %d vertices, %d loops, %d faces\n",
			len(doc.Mesh.Vertices), len(doc.Mesh.Loops), len(doc.Mesh.Faces))
		fmt.Printf("  UV layers:    %v\n", doc.Mesh.UVLayers)
		fmt.Printf("  Color layers: %v\n", doc.Mesh.ColorLayers)
		fmt.Printf("  Materials:    %v\n", doc.Mesh.Materials)
	}
	if len(doc.Submeshes) > 0 {
		fmt.Printf("Submeshes: %d\n", len(doc.Submeshes))
		for i, s := range doc.Submeshes {
			fmt.Printf("  [%d] %-24s %5d verts %5d faces %3d palette bones\n",
				i, s.MaterialID, s.VertexCount(), len(s.Faces), len(s.BonePalette))
		}
	}
}

func cmdSplit(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool split <doc.json> [out.json]")
		os.Exit(1)
	}
	doc := loadDocument(args[0])

	m, err := doc.BuildMesh()
	if err != nil {
		logger.Fatal("building unified mesh", zap.Error(err))
	}
	applyConventions(cfg, m)

	skel := doc.BuildSkeleton()
	descriptors := doc.Descriptors
	for i := range descriptors {
		if descriptors[i].MaxBonesPerSubmesh == 0 {
			descriptors[i].MaxBonesPerSubmesh = cfg.Split.MaxBonesPerSubmesh
		}
	}

	tracker := skeleton.NewUsageTracker()
	splitter := transcode.NewSplitter(skel, splitOptions(cfg))
	subs, err := splitter.Split(m, descriptors, tracker)
	if err != nil {
		logger.Fatal("splitting mesh", zap.Error(err))
	}

	for i, s := range subs {
		logger.Info("submesh",
			zap.Int("index", i),
			zap.String("material", s.MaterialID),
			zap.Int("vertices", s.VertexCount()),
			zap.Int("faces", len(s.Faces)),
			zap.Int("palette_bones", len(s.BonePalette)),
		)
	}
	union := transcode.UnionBounds(subs)
	logger.Info("split complete",
		zap.Int("submeshes", len(subs)),
		zap.Int("used_bones", len(tracker.UsedBones())),
		zap.Any("bounds_min", union.Min),
		zap.Any("bounds_max", union.Max),
	)

	if len(args) > 1 {
		out := &interchange.Document{
			Skeleton:  doc.Skeleton,
			Submeshes: subs,
		}
		if err := interchange.Save(args[1], out); err != nil {
			logger.Fatal("writing output", zap.Error(err))
		}
		fmt.Printf("Wrote %d submeshes to %s\n", len(subs), args[1])
	}
}

func cmdMerge(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool merge <doc.json> [out.json]")
		os.Exit(1)
	}
	doc := loadDocument(args[0])
	if len(doc.Submeshes) == 0 {
		logger.Fatal("document carries no submeshes")
	}

	merger := transcode.NewMerger(doc.BuildSkeleton(), transcode.MergeOptions{
		WeldVertices: cfg.Convert.WeldOnMerge,
	})
	m, err := merger.Merge(doc.Submeshes)
	if err != nil {
		logger.Fatal("merging submeshes", zap.Error(err))
	}

	logger.Info("merge complete",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("loops", len(m.Loops)),
		zap.Int("faces", len(m.Faces)),
		zap.Bool("welded", cfg.Convert.WeldOnMerge),
	)

	if len(args) > 1 {
		out := &interchange.Document{
			Skeleton: doc.Skeleton,
			Mesh:     interchange.FromMesh(m),
		}
		if err := interchange.Save(args[1], out); err != nil {
			logger.Fatal("writing output", zap.Error(err))
		}
		fmt.Printf("Wrote unified mesh to %s\n", args[1])
	}
}

func cmdRoundtrip(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool roundtrip <doc.json>")
		os.Exit(1)
	}
	doc := loadDocument(args[0])

	m, err := doc.BuildMesh()
	if err != nil {
		logger.Fatal("building unified mesh", zap.Error(err))
	}
	skel := doc.BuildSkeleton()

	splitter := transcode.NewSplitter(skel, splitOptions(cfg))
	subs, err := splitter.Split(m, doc.Descriptors, nil)
	if err != nil {
		logger.Fatal("splitting mesh", zap.Error(err))
	}

	merger := transcode.NewMerger(skel, transcode.MergeOptions{WeldVertices: true})
	back, err := merger.Merge(subs)
	if err != nil {
		logger.Fatal("merging submeshes", zap.Error(err))
	}

	fmt.Printf("Faces:    %d -> %d\n", len(m.Faces), len(back.Faces))
	fmt.Printf("Loops:    %d -> %d\n", len(m.Loops), len(back.Loops))
	fmt.Printf("Vertices: %d -> %d (welded)\n", len(m.Vertices), len(back.Vertices))
	if len(m.Faces) != len(back.Faces) {
		logger.Fatal("face count drifted through roundtrip")
	}
}
