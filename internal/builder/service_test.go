package builder

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"structurebuilder.ai/internal/config"
	"structurebuilder.ai/internal/encoding"
	"structurebuilder.ai/internal/material"
	"structurebuilder.ai/internal/protocol"
	"structurebuilder.ai/internal/structure"
	"structurebuilder.ai/internal/world"
)

type memRecorder struct {
	mu   sync.Mutex
	recs []protocol.BuildRecord
}

func (m *memRecorder) RecordBuild(rec protocol.BuildRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
}

func newService(t *testing.T, cfg Config) (*Service, *world.World) {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	w := world.New(world.Config{Logger: quiet})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-w.Done()
	})
	cfg.World = w
	cfg.Logger = quiet
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, w
}

func TestBuild_WritesWorldAndRecords(t *testing.T) {
	rec := &memRecorder{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, w := newService(t, Config{Recorders: []Recorder{rec}, Now: func() time.Time { return fixed }})
	ctx := context.Background()

	out, err := s.Build(ctx, BuildRequest{
		Type:     "Platform",
		Material: material.Cobblestone,
		Args:     map[string]any{"x": 0, "y": 64, "z": 0, "width": 3, "depth": 3},
		Actor:    "tester",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.ID == "" || out.Material != material.Cobblestone || out.Actor != "tester" {
		t.Fatalf("record=%+v", out)
	}
	if out.RecordedAt != "2026-01-02T03:04:05Z" {
		t.Fatalf("recorded_at=%s", out.RecordedAt)
	}
	if out.Result.Status != protocol.StatusSuccess || out.Result.StructureType != "platform" || out.Result.BlocksPlaced != 9 {
		t.Fatalf("result=%+v", out.Result)
	}
	if b, _ := w.BlockAt(ctx, 2, 64, 2); b != "Rock_Stone_Cobble" {
		t.Fatalf("world block=%q", b)
	}
	if len(rec.recs) != 1 || rec.recs[0].ID != out.ID {
		t.Fatalf("recorder saw %d records", len(rec.recs))
	}
}

func TestBuild_DefaultMaterial(t *testing.T) {
	s, _ := newService(t, Config{})
	out, err := s.Build(context.Background(), BuildRequest{Type: "wall", Args: map[string]any{"x": 0, "y": 0, "z": 0}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Material != material.StoneCastle || out.Result.BlocksPlaced != 55 {
		t.Fatalf("record=%+v", out)
	}
}

func TestBuild_ErrorsLeaveWorldUntouched(t *testing.T) {
	rec := &memRecorder{}
	s, w := newService(t, Config{Recorders: []Recorder{rec}})
	ctx := context.Background()

	cases := []struct {
		req  BuildRequest
		code string
	}{
		{BuildRequest{Type: "castle", Args: map[string]any{"x": 0, "y": 0, "z": 0}}, protocol.ErrUnknownStructure},
		{BuildRequest{Type: "wall", Material: "marble", Args: map[string]any{"x": 0, "y": 0, "z": 0}}, protocol.ErrUnknownMaterial},
		{BuildRequest{Type: "wall", Args: map[string]any{"y": 0, "z": 0}}, protocol.ErrMissingParameter},
		{BuildRequest{Type: "wall"}, protocol.ErrMissingParameter},
	}
	for _, c := range cases {
		_, err := s.Build(ctx, c.req)
		var coded protocol.Coded
		if !errors.As(err, &coded) || coded.Code() != c.code {
			t.Fatalf("%+v: err=%v", c.req, err)
		}
	}
	st, _ := w.Stats(ctx)
	if st.NonAir != 0 || len(rec.recs) != 0 {
		t.Fatalf("stats=%+v records=%d", st, len(rec.recs))
	}
}

func TestBuild_MaxBlocks(t *testing.T) {
	s, w := newService(t, Config{MaxBlocks: 100})
	ctx := context.Background()
	_, err := s.Build(ctx, BuildRequest{Type: "platform", Args: map[string]any{"x": 0, "y": 0, "z": 0}})
	if err != nil {
		t.Fatalf("100 blocks should fit: %v", err)
	}
	_, err = s.Build(ctx, BuildRequest{Type: "platform", Args: map[string]any{"x": 0, "y": 0, "z": 0, "thickness": 2}})
	var tl *TooLargeError
	if !errors.As(err, &tl) || tl.Max != 100 || tl.Type != "platform" {
		t.Fatalf("err=%v", err)
	}
	st, _ := w.Stats(ctx)
	if st.NonAir != 100 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestFlatWorld_DefaultArgsFitDefaultLimits(t *testing.T) {
	def := config.Defaults()
	s, _ := newService(t, Config{MaxBlocks: def.Builds.MaxBlocks, FlatWorldMaxBlocks: def.Builds.FlatWorldMaxBlocks})
	out, err := s.FlatWorld(context.Background(), map[string]any{"x": 0, "z": 0}, "admin")
	if err != nil {
		t.Fatalf("FlatWorld: %v", err)
	}
	// (2*100+1)^2 columns of 10 fill + 1 surface + 60 clear.
	if out.Result.BlocksPlaced != 201*201*71 {
		t.Fatalf("blocks=%d", out.Result.BlocksPlaced)
	}
	// The flat_world limit does not loosen other kinds.
	_, err = s.Build(context.Background(), BuildRequest{Type: "platform", Args: map[string]any{"x": 0, "y": 0, "z": 0, "width": 600, "depth": 600}})
	var tl *TooLargeError
	if !errors.As(err, &tl) || tl.Max != def.Builds.MaxBlocks {
		t.Fatalf("err=%v", err)
	}
}

func TestResolve_HugeRequestRejectedQuickly(t *testing.T) {
	s, err := New(Config{MaxBlocks: 10, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := time.Now()
	_, err = s.Preview(BuildRequest{Type: "flat_world", Args: map[string]any{"x": 0, "z": 0, "radius": 5000}}, false)
	var tl *TooLargeError
	if !errors.As(err, &tl) || err.Error() != "structure flat_world would place more than 10 blocks" {
		t.Fatalf("err=%v", err)
	}
	if d := time.Since(start); d > time.Second {
		t.Fatalf("rejection took %s", d)
	}
}

func TestBuild_RegistrySubset(t *testing.T) {
	s, _ := newService(t, Config{Registry: structure.Builtin().Without("flat_world")})
	_, err := s.FlatWorld(context.Background(), map[string]any{"x": 0, "z": 0, "radius": 1}, "")
	var ute *structure.UnknownTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("err=%v", err)
	}
}

func TestFlatWorld(t *testing.T) {
	s, w := newService(t, Config{})
	ctx := context.Background()
	out, err := s.FlatWorld(ctx, map[string]any{"x": 0, "z": 0, "radius": 2, "surfaceY": 10, "depth": 5, "clearHeight": 3}, "admin")
	if err != nil {
		t.Fatalf("FlatWorld: %v", err)
	}
	if out.Result.BlocksPlaced != 225 || out.Result.StructureType != "flat_world" {
		t.Fatalf("result=%+v", out.Result)
	}
	if b, _ := w.BlockAt(ctx, 1, 10, -1); b != structure.DefaultSurfaceBlock {
		t.Fatalf("surface=%q", b)
	}
	st, _ := w.Stats(ctx)
	// air writes leave cells empty
	if st.NonAir != 150 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestPreview_DoesNotTouchWorld(t *testing.T) {
	rec := &memRecorder{}
	s, w := newService(t, Config{Recorders: []Recorder{rec}})
	pv, err := s.Preview(BuildRequest{Type: "wall", Args: map[string]any{"x": 0, "y": 0, "z": 0, "length": 3, "height": 1, "battlements": false}}, true)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if pv.Result.BlocksPlaced != 3 || len(pv.Placements) != 3 {
		t.Fatalf("preview=%+v", pv)
	}
	if pv.Counts[material.DefaultWallAccent] != 2 || pv.Counts[material.DefaultWall] != 1 {
		t.Fatalf("counts=%v", pv.Counts)
	}
	names, err := encoding.DecodeBlocks(pv.Blocks)
	if err != nil {
		t.Fatalf("DecodeBlocks: %v", err)
	}
	want := []string{material.DefaultWallAccent, material.DefaultWall, material.DefaultWallAccent}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names=%v", names)
		}
	}
	st, _ := w.Stats(context.Background())
	if st.Txns != 1 || st.NonAir != 0 || len(rec.recs) != 0 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestBuild_WorldStopped(t *testing.T) {
	s, w := newService(t, Config{})
	w.Stop()
	<-w.Done()
	_, err := s.Build(context.Background(), BuildRequest{Type: "platform", Args: map[string]any{"x": 0, "y": 0, "z": 0}})
	if !errors.Is(err, world.ErrStopped) {
		t.Fatalf("err=%v", err)
	}
}

func TestPreviewOnlyService(t *testing.T) {
	s, err := New(Config{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pv, err := s.Preview(BuildRequest{Type: "platform", Args: map[string]any{"x": 0, "y": 0, "z": 0, "width": 2, "depth": 2}}, false)
	if err != nil || pv.Result.BlocksPlaced != 4 || pv.Placements != nil {
		t.Fatalf("preview=%+v err=%v", pv, err)
	}
	if _, err := s.Build(context.Background(), BuildRequest{Type: "platform", Args: map[string]any{"x": 0, "y": 0, "z": 0}}); !errors.Is(err, ErrNoWorld) {
		t.Fatalf("err=%v", err)
	}
}
