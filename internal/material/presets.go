package material

import (
	"fmt"
	"strings"

	"structurebuilder.ai/internal/protocol"
)

const (
	RusticWood  = "rustic_wood"
	StoneCastle = "stone_castle"
	Cobblestone = "cobblestone"
)

var builtins = []Palette{
	New(Spec{
		Name:       RusticWood,
		Foundation: "Rock_Stone_Cobble",
		Wall:       "Wood_Softwood_Planks",
		WallAccent: "Wood_Softwood_Beam",
		Floor:      "Wood_Softwood_Planks",
		Ceiling:    "Wood_Softwood_Planks",
		Roof:       "Wood_Softwood_Planks",
		RoofTrim:   "Wood_Softwood_Beam",
	}),
	New(Spec{
		Name:       StoneCastle,
		Foundation: "Rock_Stone_Cobble",
		Wall:       "Rock_Stone_Brick",
		WallAccent: "Wood_Softwood_Beam",
		Floor:      "Wood_Softwood_Planks",
		Ceiling:    "Wood_Softwood_Planks",
		Roof:       "Wood_Softwood_Planks",
		RoofTrim:   "Wood_Softwood_Beam",
	}),
	New(Spec{
		Name:       Cobblestone,
		Foundation: "Rock_Stone_Cobble",
		Wall:       "Rock_Stone_Cobble",
		WallAccent: "Rock_Stone_Brick",
		Floor:      "Rock_Stone_Cobble",
		Ceiling:    "Rock_Stone_Cobble",
		Roof:       "Rock_Stone_Cobble",
		RoofTrim:   "Rock_Stone_Brick",
	}),
}

// UnknownPresetError reports a palette lookup miss. It is recoverable: callers
// surface Error() verbatim so the user sees the valid names.
type UnknownPresetError struct {
	Name      string
	Available []string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("Unknown material preset: %s. Available: %s", e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownPresetError) Code() string { return protocol.ErrUnknownMaterial }

// Presets is an ordered, read-only set of named palettes. Values are safe to
// share between goroutines; With returns a new set instead of mutating.
type Presets struct {
	order  []string
	byName map[string]Palette
}

var defaultPresets = newPresets(builtins)

// Builtins returns the presets compiled into the binary.
func Builtins() Presets { return defaultPresets }

func newPresets(ps []Palette) Presets {
	out := Presets{
		order:  make([]string, 0, len(ps)),
		byName: make(map[string]Palette, len(ps)),
	}
	for _, p := range ps {
		if _, dup := out.byName[p.Name()]; !dup {
			out.order = append(out.order, p.Name())
		}
		out.byName[p.Name()] = p
	}
	return out
}

// Get looks a palette up by name.
func (ps Presets) Get(name string) (Palette, error) {
	p, ok := ps.byName[name]
	if !ok {
		return Palette{}, &UnknownPresetError{Name: name, Available: ps.Names()}
	}
	return p, nil
}

// Default returns the stone_castle palette.
func (ps Presets) Default() Palette {
	return ps.byName[StoneCastle]
}

// Names lists palette names in registration order.
func (ps Presets) Names() []string {
	return append([]string(nil), ps.order...)
}

// Palettes lists palettes in registration order.
func (ps Presets) Palettes() []Palette {
	out := make([]Palette, 0, len(ps.order))
	for _, n := range ps.order {
		out = append(out, ps.byName[n])
	}
	return out
}

// With returns a copy of ps extended by extra. Extra palettes may not reuse a
// name that is already registered.
func (ps Presets) With(extra ...Palette) (Presets, error) {
	all := ps.Palettes()
	for _, p := range extra {
		if strings.TrimSpace(p.Name()) == "" {
			return ps, fmt.Errorf("palette name must not be empty")
		}
		if _, ok := ps.byName[p.Name()]; ok {
			return ps, fmt.Errorf("duplicate palette name: %s", p.Name())
		}
		all = append(all, p)
	}
	out := newPresets(all)
	if len(out.order) != len(all) {
		return ps, fmt.Errorf("duplicate palette names in extra palettes")
	}
	return out, nil
}
