package structure

import (
	"strings"

	"structurebuilder.ai/internal/material"
)

// Kind is the closed set of structure types.
type Kind uint8

const (
	KindPlatform Kind = iota + 1
	KindWall
	KindTower
	KindHouse
	KindBridge
	KindStaircase
	KindFence
	KindArch
	KindRoad
	KindWell
	KindFlatWorld
)

// Kinds lists every kind in registration order.
var Kinds = []Kind{
	KindPlatform, KindWall, KindTower, KindHouse, KindBridge, KindStaircase,
	KindFence, KindArch, KindRoad, KindWell, KindFlatWorld,
}

func (k Kind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindWall:
		return "wall"
	case KindTower:
		return "tower"
	case KindHouse:
		return "house"
	case KindBridge:
		return "bridge"
	case KindStaircase:
		return "staircase"
	case KindFence:
		return "fence"
	case KindArch:
		return "arch"
	case KindRoad:
		return "road"
	case KindWell:
		return "well"
	case KindFlatWorld:
		return "flat_world"
	default:
		return "unknown"
	}
}

// Generator builds one structure kind into a sink.
type Generator func(p Params, pal material.Palette, sink BlockSink) (Result, error)

// Generate runs the generator for k.
func Generate(k Kind, p Params, pal material.Palette, sink BlockSink) (Result, error) {
	switch k {
	case KindPlatform:
		return Platform(p, pal, sink)
	case KindWall:
		return Wall(p, pal, sink)
	case KindTower:
		return Tower(p, pal, sink)
	case KindHouse:
		return House(p, pal, sink)
	case KindBridge:
		return Bridge(p, pal, sink)
	case KindStaircase:
		return Staircase(p, pal, sink)
	case KindFence:
		return Fence(p, pal, sink)
	case KindArch:
		return Arch(p, pal, sink)
	case KindRoad:
		return Road(p, pal, sink)
	case KindWell:
		return Well(p, pal, sink)
	case KindFlatWorld:
		return FlatWorld(p, pal, sink)
	default:
		return Result{}, &UnknownTypeError{Name: k.String(), Available: names(Kinds)}
	}
}

// Measure dry-runs k and reports how many commands it would emit. Generation
// stops at the first command past limit, in which case over is true and n is
// limit+1. A limit <= 0 counts everything.
func Measure(k Kind, p Params, pal material.Palette, limit int) (n int, over bool, err error) {
	cs := &CountingSink{limit: limit}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(blockLimitReached); !ok {
			panic(r)
		}
		n, over, err = cs.Count(), true, nil
	}()
	if _, err := Generate(k, p, pal, cs); err != nil {
		return 0, false, err
	}
	return cs.Count(), false, nil
}

// Registry resolves type names to kinds. A registry may expose a subset of
// Kinds; dispatch to anything outside it fails before the sink is touched.
type Registry struct {
	kinds  []Kind
	byName map[string]Kind
}

var builtin = NewRegistry(Kinds...)

// Builtin returns the registry of every structure kind.
func Builtin() *Registry { return builtin }

func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{byName: make(map[string]Kind, len(kinds))}
	for _, k := range kinds {
		name := k.String()
		if _, dup := r.byName[name]; dup || name == "unknown" {
			continue
		}
		r.kinds = append(r.kinds, k)
		r.byName[name] = k
	}
	return r
}

// Without returns a registry lacking the named kinds. Unknown names are
// ignored.
func (r *Registry) Without(names ...string) *Registry {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[strings.ToLower(strings.TrimSpace(n))] = true
	}
	keep := make([]Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		if !drop[k.String()] {
			keep = append(keep, k)
		}
	}
	return NewRegistry(keep...)
}

func (r *Registry) Names() []string { return names(r.kinds) }

// Lookup resolves a type name case-insensitively.
func (r *Registry) Lookup(name string) (Kind, bool) {
	k, ok := r.byName[strings.ToLower(name)]
	return k, ok
}

// Dispatch resolves name and runs its generator.
func (r *Registry) Dispatch(name string, p Params, pal material.Palette, sink BlockSink) (Result, error) {
	k, ok := r.Lookup(name)
	if !ok {
		return Result{}, &UnknownTypeError{Name: name, Available: r.Names()}
	}
	return Generate(k, p, pal, sink)
}

// Dispatch runs name against the builtin registry.
func Dispatch(name string, p Params, pal material.Palette, sink BlockSink) (Result, error) {
	return builtin.Dispatch(name, p, pal, sink)
}

func names(kinds []Kind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.String())
	}
	return out
}
