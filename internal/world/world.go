package world

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"sync/atomic"

	"structurebuilder.ai/internal/encoding"
	"structurebuilder.ai/internal/material"
)

var ErrStopped = errors.New("world stopped")

type Config struct {
	ID string
	// BoundaryR limits |x| and |z|; 0 means unbounded.
	BoundaryR int
	MinY      int
	MaxY      int
	QueueSize int
	Logger    *log.Logger
}

func (c *Config) normalize() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.MinY == 0 && c.MaxY == 0 {
		c.MinY, c.MaxY = -64, 319
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
}

type task struct {
	fn   func(*Txn) error
	resp chan error
}

// World is the destination voxel store. Blocks are only read or written from
// the goroutine running Run; other goroutines submit work through Exec.
type World struct {
	cfg Config
	log *log.Logger

	sections map[ChunkKey]*Section
	blocks   *encoding.Interner

	tasks   chan task
	stop    chan struct{}
	stopped atomic.Bool
	done    chan struct{}

	writes   atomic.Uint64
	rejected atomic.Uint64
	txns     atomic.Uint64
}

func New(cfg Config) *World {
	cfg.normalize()
	l := cfg.Logger
	if l == nil {
		l = log.Default()
	}
	return &World{
		cfg:      cfg,
		log:      l,
		sections: map[ChunkKey]*Section{},
		blocks:   encoding.NewInterner(material.Air),
		tasks:    make(chan task, cfg.QueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *World) ID() string { return w.cfg.ID }

// Run drains submitted transactions until ctx is done or Stop is called.
// Pending transactions are failed with ErrStopped.
func (w *World) Run(ctx context.Context) error {
	defer close(w.done)
	defer w.drain()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case t := <-w.tasks:
			t.resp <- w.apply(t.fn)
		}
	}
}

func (w *World) Stop() {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.stop)
	}
}

// Done is closed once Run has returned.
func (w *World) Done() <-chan struct{} { return w.done }

func (w *World) drain() {
	w.stopped.Store(true)
	for {
		select {
		case t := <-w.tasks:
			t.resp <- ErrStopped
		default:
			return
		}
	}
}

func (w *World) apply(fn func(*Txn) error) (err error) {
	tx := &Txn{w: w}
	defer func() {
		if r := recover(); r != nil {
			w.log.Printf("[world] %s txn panic: %v", w.cfg.ID, r)
			err = errors.New("world transaction panicked")
		}
		w.txns.Add(1)
		w.writes.Add(uint64(tx.n - tx.rejected))
		w.rejected.Add(uint64(tx.rejected))
	}()
	return fn(tx)
}

// Exec runs fn on the world goroutine and waits for it. fn must not retain
// the Txn after returning.
func (w *World) Exec(ctx context.Context, fn func(*Txn) error) error {
	if w.stopped.Load() {
		return ErrStopped
	}
	t := task{fn: fn, resp: make(chan error, 1)}
	select {
	case w.tasks <- t:
	case <-w.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return w.wait(ctx, t)
}

func (w *World) wait(ctx context.Context, t task) error {
	select {
	case err := <-t.resp:
		return err
	case <-w.done:
		// Run may have answered just before exiting.
		select {
		case err := <-t.resp:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *World) inBounds(x, y, z int) bool {
	if y < w.cfg.MinY || y > w.cfg.MaxY {
		return false
	}
	if r := w.cfg.BoundaryR; r > 0 && (x < -r || x > r || z < -r || z > r) {
		return false
	}
	return true
}

func (w *World) get(x, y, z int) uint16 {
	s := w.sections[keyOf(x, y, z)]
	if s == nil {
		return 0
	}
	return s.Get(mod(x, SectionSize), mod(y, SectionSize), mod(z, SectionSize))
}

func (w *World) set(x, y, z int, id uint16) {
	k := keyOf(x, y, z)
	s := w.sections[k]
	if s == nil {
		if id == 0 {
			return
		}
		s = newSection(k)
		w.sections[k] = s
	}
	s.Set(mod(x, SectionSize), mod(y, SectionSize), mod(z, SectionSize), id)
	if s.NonAir() == 0 {
		delete(w.sections, k)
	}
}

type Stats struct {
	WorldID   string `json:"world_id"`
	Sections  int    `json:"sections"`
	NonAir    int    `json:"non_air"`
	Palette   int    `json:"palette"`
	Writes    uint64 `json:"writes"`
	Rejected  uint64 `json:"rejected"`
	Txns      uint64 `json:"txns"`
	QueueLen  int    `json:"queue_len"`
	QueueSize int    `json:"queue_size"`
}

func (w *World) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := w.Exec(ctx, func(tx *Txn) error {
		st.Sections = len(w.sections)
		for _, s := range w.sections {
			st.NonAir += s.NonAir()
		}
		st.Palette = w.blocks.Len()
		return nil
	})
	st.WorldID = w.cfg.ID
	st.Writes = w.writes.Load()
	st.Rejected = w.rejected.Load()
	st.Txns = w.txns.Load()
	st.QueueLen = len(w.tasks)
	st.QueueSize = cap(w.tasks)
	return st, err
}

// BlockAt returns the block name at a coordinate; unset cells are air.
func (w *World) BlockAt(ctx context.Context, x, y, z int) (string, error) {
	var out string
	err := w.Exec(ctx, func(tx *Txn) error {
		out = tx.BlockAt(x, y, z)
		return nil
	})
	return out, err
}

// Digest hashes every non-empty section in key order together with the block
// names its ids refer to.
func (w *World) Digest(ctx context.Context) (string, error) {
	var out string
	err := w.Exec(ctx, func(tx *Txn) error {
		keys := make([]ChunkKey, 0, len(w.sections))
		for k := range w.sections {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := keys[i], keys[j]
			if a.CX != b.CX {
				return a.CX < b.CX
			}
			if a.CY != b.CY {
				return a.CY < b.CY
			}
			return a.CZ < b.CZ
		})
		h := sha256.New()
		var tmp [8]byte
		for _, name := range w.blocks.Names() {
			h.Write([]byte(name))
			h.Write([]byte{0})
		}
		for _, k := range keys {
			for _, v := range []int{k.CX, k.CY, k.CZ} {
				binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v)))
				h.Write(tmp[:])
			}
			d := w.sections[k].Digest()
			h.Write(d[:])
		}
		out = hex.EncodeToString(h.Sum(nil))
		return nil
	})
	return out, err
}
