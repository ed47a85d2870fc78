package builder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"structurebuilder.ai/internal/encoding"
	"structurebuilder.ai/internal/material"
	"structurebuilder.ai/internal/protocol"
	"structurebuilder.ai/internal/structure"
	"structurebuilder.ai/internal/world"
)

// ErrNoWorld is returned by Build on a preview-only service.
var ErrNoWorld = errors.New("builder: no world attached")

// Recorder receives every accepted build. Implementations must not block.
type Recorder interface {
	RecordBuild(rec protocol.BuildRecord)
}

type RecorderFunc func(rec protocol.BuildRecord)

func (f RecorderFunc) RecordBuild(rec protocol.BuildRecord) { f(rec) }

type Config struct {
	// World may be nil for a preview-only service.
	World     *world.World
	Registry  *structure.Registry
	Presets   material.Presets
	Recorders []Recorder
	Logger    *log.Logger

	// MaxBlocks rejects builds that would emit more commands; 0 disables the
	// check.
	MaxBlocks int
	// FlatWorldMaxBlocks replaces MaxBlocks for flat_world; 0 means MaxBlocks
	// applies.
	FlatWorldMaxBlocks int
	// ExecTimeout bounds how long a build waits for the world; 0 means the
	// caller's context alone.
	ExecTimeout time.Duration

	Now func() time.Time
}

type Service struct {
	cfg Config
	log *log.Logger
}

type BuildRequest struct {
	Type     string         `json:"type"`
	Material string         `json:"material,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Actor    string         `json:"actor,omitempty"`
}

// TooLargeError is returned when a build exceeds its block limit. The dry run
// stops at the limit, so the full size is not known.
type TooLargeError struct {
	Type string
	Max  int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("structure %s would place more than %d blocks", e.Type, e.Max)
}

func (e *TooLargeError) Code() string { return protocol.ErrBadRequest }

func New(cfg Config) (*Service, error) {
	if cfg.Registry == nil {
		cfg.Registry = structure.Builtin()
	}
	if len(cfg.Presets.Names()) == 0 {
		cfg.Presets = material.Builtins()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	l := cfg.Logger
	if l == nil {
		l = log.Default()
	}
	return &Service{cfg: cfg, log: l}, nil
}

func (s *Service) Structures() []string { return s.cfg.Registry.Names() }

func (s *Service) Materials() []material.Palette { return s.cfg.Presets.Palettes() }

func (s *Service) MaterialNames() []string { return s.cfg.Presets.Names() }

func (s *Service) palette(name string) (material.Palette, error) {
	if strings.TrimSpace(name) == "" {
		return s.cfg.Presets.Default(), nil
	}
	return s.cfg.Presets.Get(name)
}

// resolve validates a request without touching the world.
func (s *Service) resolve(req BuildRequest) (structure.Kind, material.Palette, structure.Params, error) {
	k, ok := s.cfg.Registry.Lookup(req.Type)
	if !ok {
		return 0, material.Palette{}, nil, &structure.UnknownTypeError{Name: req.Type, Available: s.cfg.Registry.Names()}
	}
	pal, err := s.palette(req.Material)
	if err != nil {
		return 0, material.Palette{}, nil, err
	}
	p := structure.Params(req.Args)
	if p == nil {
		p = structure.Params{}
	}
	if limit := s.maxBlocks(k); limit > 0 {
		_, over, err := structure.Measure(k, p, pal, limit)
		if err != nil {
			return 0, material.Palette{}, nil, err
		}
		if over {
			return 0, material.Palette{}, nil, &TooLargeError{Type: k.String(), Max: limit}
		}
	}
	return k, pal, p, nil
}

func (s *Service) maxBlocks(k structure.Kind) int {
	if k == structure.KindFlatWorld && s.cfg.FlatWorldMaxBlocks > 0 {
		return s.cfg.FlatWorldMaxBlocks
	}
	return s.cfg.MaxBlocks
}

// Build generates req into the world on the world goroutine and fans the
// resulting record out to every recorder.
func (s *Service) Build(ctx context.Context, req BuildRequest) (protocol.BuildRecord, error) {
	if s.cfg.World == nil {
		return protocol.BuildRecord{}, ErrNoWorld
	}
	k, pal, p, err := s.resolve(req)
	if err != nil {
		return protocol.BuildRecord{}, err
	}
	if s.cfg.ExecTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ExecTimeout)
		defer cancel()
	}

	var res structure.Result
	var rejected int
	err = s.cfg.World.Exec(ctx, func(tx *world.Txn) error {
		r, err := structure.Generate(k, p, pal, tx)
		if err != nil {
			return err
		}
		res = r
		rejected = tx.Rejected()
		return nil
	})
	if err != nil {
		return protocol.BuildRecord{}, err
	}

	rec := protocol.BuildRecord{
		ID:         uuid.NewString(),
		Actor:      req.Actor,
		Material:   pal.Name(),
		Args:       req.Args,
		Result:     res.Document(),
		RecordedAt: s.cfg.Now().UTC().Format(time.RFC3339Nano),
	}
	s.log.Printf("[builder] build id=%s type=%s material=%s blocks=%d rejected=%d ms=%d",
		rec.ID, rec.Result.StructureType, rec.Material, rec.Result.BlocksPlaced, rejected, rec.Result.BuildTimeMs)
	for _, r := range s.cfg.Recorders {
		r.RecordBuild(rec)
	}
	return rec, nil
}

// FlatWorld levels terrain with the default palette.
func (s *Service) FlatWorld(ctx context.Context, args map[string]any, actor string) (protocol.BuildRecord, error) {
	return s.Build(ctx, BuildRequest{Type: structure.KindFlatWorld.String(), Args: args, Actor: actor})
}

type Preview struct {
	Result     protocol.BuildDocument `json:"result"`
	Material   string                 `json:"material"`
	Counts     map[string]int         `json:"counts"`
	Blocks     encoding.Blocks        `json:"blocks"`
	Placements []structure.Placement  `json:"placements,omitempty"`
}

// Preview runs req against an in-memory sink. The world is not touched and
// no recorder is notified.
func (s *Service) Preview(req BuildRequest, withPlacements bool) (Preview, error) {
	k, pal, p, err := s.resolve(req)
	if err != nil {
		return Preview{}, err
	}
	sink := structure.NewRecordingSink()
	res, err := structure.Generate(k, p, pal, sink)
	if err != nil {
		return Preview{}, err
	}
	names := make([]string, 0, sink.Count())
	for _, pl := range sink.Placements() {
		names = append(names, pl.Block)
	}
	out := Preview{
		Result:   res.Document(),
		Material: pal.Name(),
		Counts:   sink.Types(),
		Blocks:   encoding.EncodeBlocks(names),
	}
	if withPlacements {
		out.Placements = sink.Placements()
	}
	return out, nil
}
