package structure

import "structurebuilder.ai/internal/material"

// Fence encloses a width×depth rectangle. A gate removes a centred span of
// gateWidth from one side and is framed by taller posts carrying lanterns.
func Fence(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	x, y, z := o.X, o.Y, o.Z
	width := p.IntOr("width", 20)
	depth := p.IntOr("depth", 20)
	height := p.IntOr("height", 2)
	gate := p.BoolOr("gate", true)
	side := p.StringOr("gateSide", "south")
	gateWidth := p.IntOr("gateWidth", 3)
	posts := p.BoolOr("posts", true)

	gx0 := x + width/2 - gateWidth/2
	gx1 := gx0 + gateWidth - 1
	gz0 := z + depth/2 - gateWidth/2
	gz1 := gz0 + gateWidth - 1
	inGate := func(s string, v, lo, hi int) bool {
		return gate && side == s && v >= lo && v <= hi
	}

	e := newEmitter(sink, o)
	for h := 0; h < height; h++ {
		by := y + h
		for dx := 0; dx < width; dx++ {
			if !inGate("north", x+dx, gx0, gx1) {
				e.place(x+dx, by, z, pal.Wall())
			}
		}
		for dx := 0; dx < width; dx++ {
			if !inGate("south", x+dx, gx0, gx1) {
				e.place(x+dx, by, z+depth-1, pal.Wall())
			}
		}
		for dz := 1; dz < depth-1; dz++ {
			if !inGate("west", z+dz, gz0, gz1) {
				e.place(x, by, z+dz, pal.Wall())
			}
		}
		for dz := 1; dz < depth-1; dz++ {
			if !inGate("east", z+dz, gz0, gz1) {
				e.place(x+width-1, by, z+dz, pal.Wall())
			}
		}
	}

	if posts {
		corners := [4][2]int{{x, z}, {x + width - 1, z}, {x, z + depth - 1}, {x + width - 1, z + depth - 1}}
		for _, c := range corners {
			for h := 0; h <= height; h++ {
				e.place(c[0], y+h, c[1], pal.WallAccent())
			}
		}
	}

	if gate {
		var frame [2][2]int
		switch side {
		case "north":
			frame = [2][2]int{{gx0 - 1, z}, {gx1 + 1, z}}
		case "east":
			frame = [2][2]int{{x + width - 1, gz0 - 1}, {x + width - 1, gz1 + 1}}
		case "west":
			frame = [2][2]int{{x, gz0 - 1}, {x, gz1 + 1}}
		default:
			frame = [2][2]int{{gx0 - 1, z + depth - 1}, {gx1 + 1, z + depth - 1}}
		}
		postH := height + 1
		for _, f := range frame {
			for h := 0; h <= postH; h++ {
				e.place(f[0], y+h, f[1], pal.WallAccent())
			}
			e.place(f[0], y+postH+1, f[1], pal.Lantern())
		}

		// Only the four named sides get a threshold; an unrecognised side
		// framed as south above is left open.
		switch side {
		case "north":
			for gx := gx0; gx <= gx1; gx++ {
				e.place(gx, y, z, pal.Foundation())
			}
		case "south":
			for gx := gx0; gx <= gx1; gx++ {
				e.place(gx, y, z+depth-1, pal.Foundation())
			}
		case "west":
			for gz := gz0; gz <= gz1; gz++ {
				e.place(x, y, gz, pal.Foundation())
			}
		case "east":
			for gz := gz0; gz <= gz1; gz++ {
				e.place(x+width-1, y, gz, pal.Foundation())
			}
		}
	}
	return e.result(KindFence), nil
}
