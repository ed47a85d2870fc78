package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"structurebuilder.ai/internal/builder"
	persistlog "structurebuilder.ai/internal/persistence/log"
	"structurebuilder.ai/internal/protocol"
	"structurebuilder.ai/internal/world"
)

func startService(t *testing.T, recorders ...builder.Recorder) (*builder.Service, *world.World) {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	w := world.New(world.Config{Logger: quiet})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-w.Done()
	})
	svc, err := builder.New(builder.Config{World: w, Recorders: recorders, Logger: quiet})
	if err != nil {
		t.Fatalf("builder.New: %v", err)
	}
	return svc, w
}

func TestReplay_ReproducesLoggedBuilds(t *testing.T) {
	dataDir := t.TempDir()
	bl := persistlog.NewBuildLogger(dataDir, log.New(io.Discard, "", 0))
	src, srcWorld := startService(t, bl)
	ctx := context.Background()

	reqs := []builder.BuildRequest{
		{Type: "platform", Material: "stone_castle", Args: map[string]any{"x": 0, "y": 60, "z": 0, "width": 4, "depth": 4}},
		{Type: "house", Material: "rustic_wood", Args: map[string]any{"x": 10, "y": 61, "z": -5}},
		{Type: "well", Args: map[string]any{"x": -8, "y": 61, "z": 3, "roof": false}},
	}
	for _, r := range reqs {
		if _, err := src.Build(ctx, r); err != nil {
			t.Fatalf("Build %s: %v", r.Type, err)
		}
	}
	if err := bl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := listBuildFiles(filepath.Join(dataDir, "builds"))
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	recs, err := persistlog.ReadBuilds(files[0])
	if err != nil || len(recs) != len(reqs) {
		t.Fatalf("recs=%d err=%v", len(recs), err)
	}

	dst, dstWorld := startService(t)
	rep, err := replay(ctx, dst, recs)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if rep.Builds != 3 {
		t.Fatalf("report=%+v", rep)
	}

	want, _ := srcWorld.Digest(ctx)
	got, _ := dstWorld.Digest(ctx)
	if want != got {
		t.Fatalf("digest mismatch: %s vs %s", got, want)
	}
}

func TestReplay_DetectsMismatch(t *testing.T) {
	svc, _ := startService(t)
	rec := protocol.BuildRecord{
		ID:       "b1",
		Material: "cobblestone",
		Args:     map[string]any{"x": float64(0), "y": float64(0), "z": float64(0), "width": float64(2), "depth": float64(2)},
		Result: protocol.BuildDocument{
			Status:        protocol.StatusSuccess,
			StructureType: "platform",
			BlocksPlaced:  5,
		},
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err := replay(context.Background(), svc, []protocol.BuildRecord{rec})
	if err == nil || !strings.Contains(err.Error(), "blocks mismatch: got=4 want=5") {
		t.Fatalf("err=%v", err)
	}
}

func TestListBuildFiles_SortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"builds-2026-03-01-15.jsonl.zst", "notes.txt", "builds-2026-03-01-14.jsonl.zst"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := listBuildFiles(dir)
	if err != nil || len(files) != 2 || !strings.HasSuffix(files[0], "-14.jsonl.zst") {
		t.Fatalf("files=%v err=%v", files, err)
	}
}
