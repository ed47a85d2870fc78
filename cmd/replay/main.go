package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"structurebuilder.ai/internal/builder"
	"structurebuilder.ai/internal/config"
	"structurebuilder.ai/internal/material"
	persistlog "structurebuilder.ai/internal/persistence/log"
	"structurebuilder.ai/internal/protocol"
	"structurebuilder.ai/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "server config (world bounds and materials file; optional)")
		buildsDir  = flag.String("builds", "./data/builds", "directory containing builds-*.jsonl.zst")
		limit      = flag.Int("limit", 0, "stop after this many builds (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	presets, err := material.LoadFile(cfg.Materials.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load materials:", err)
		os.Exit(1)
	}

	files, err := listBuildFiles(*buildsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list builds:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no build logs found in", *buildsDir)
		os.Exit(1)
	}

	var recs []protocol.BuildRecord
	for _, path := range files {
		got, err := persistlog.ReadBuilds(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		recs = append(recs, got...)
	}
	if *limit > 0 && len(recs) > *limit {
		recs = recs[:*limit]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := world.New(world.Config{
		ID:        cfg.World.ID,
		BoundaryR: cfg.World.BoundaryR,
		MinY:      cfg.World.MinY,
		MaxY:      cfg.World.MaxY,
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
	})
	go func() { _ = w.Run(ctx) }()

	svc, err := builder.New(builder.Config{
		World:   w,
		Presets: presets,
		Logger:  log.New(io.Discard, "", 0),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "builder:", err)
		os.Exit(1)
	}

	rep, err := replay(ctx, svc, recs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	digest, err := w.Digest(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "digest:", err)
		os.Exit(1)
	}
	st, _ := w.Stats(ctx)
	fmt.Printf("replay ok: files=%d builds=%d blocks=%d non_air=%d sections=%d digest=%s\n",
		len(files), rep.Builds, rep.Blocks, st.NonAir, st.Sections, digest)
}

type replayReport struct {
	Builds int
	Blocks int
}

// replay rebuilds every record in order and fails on the first one whose
// regenerated document differs from what was logged.
func replay(ctx context.Context, svc *builder.Service, recs []protocol.BuildRecord) (replayReport, error) {
	var rep replayReport
	for i, rec := range recs {
		got, err := svc.Build(ctx, builder.BuildRequest{
			Type:     rec.Result.StructureType,
			Material: rec.Material,
			Args:     rec.Args,
			Actor:    rec.Actor,
		})
		if err != nil {
			return rep, fmt.Errorf("build %d (id=%s type=%s): %w", i, rec.ID, rec.Result.StructureType, err)
		}
		if got.Result.BlocksPlaced != rec.Result.BlocksPlaced {
			return rep, fmt.Errorf("build %d (id=%s): blocks mismatch: got=%d want=%d", i, rec.ID, got.Result.BlocksPlaced, rec.Result.BlocksPlaced)
		}
		if got.Result.BoundingBox != rec.Result.BoundingBox {
			return rep, fmt.Errorf("build %d (id=%s): bounding box mismatch: got=%+v want=%+v", i, rec.ID, got.Result.BoundingBox, rec.Result.BoundingBox)
		}
		rep.Builds++
		rep.Blocks += got.Result.BlocksPlaced
	}
	return rep, nil
}

func listBuildFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "builds-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
