package structure

import "structurebuilder.ai/internal/material"

// Bridge lays a length×width deck at y with optional railings on both long
// edges and support pillars every supportSpacing positions.
func Bridge(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	length := p.IntOr("length", 15)
	width := p.IntOr("width", 3)
	ax := axisOf(p.StringOr("direction", "x"))
	railings := p.BoolOr("railings", true)
	supports := p.BoolOr("supports", true)
	spacing := max(1, p.IntOr("supportSpacing", 5))
	supportDepth := p.IntOr("supportDepth", 5)

	e := newEmitter(sink, o)
	for l := 0; l < length; l++ {
		for w := 0; w < width; w++ {
			bx, bz := ax.at(o.X, o.Z, l, w)
			e.place(bx, o.Y, bz, pal.Floor())
		}
	}
	if railings {
		for l := 0; l < length; l++ {
			x1, z1 := ax.at(o.X, o.Z, l, 0)
			x2, z2 := ax.at(o.X, o.Z, l, width-1)
			e.place(x1, o.Y+1, z1, pal.WallAccent())
			e.place(x2, o.Y+1, z2, pal.WallAccent())
		}
	}
	if supports {
		for l := 0; l < length; l += spacing {
			x1, z1 := ax.at(o.X, o.Z, l, 0)
			x2, z2 := ax.at(o.X, o.Z, l, width-1)
			for d := 1; d <= supportDepth; d++ {
				e.place(x1, o.Y-d, z1, pal.Foundation())
				e.place(x2, o.Y-d, z2, pal.Foundation())
			}
		}
	}
	return e.result(KindBridge), nil
}

// Road lays a length×width surface with optional alternating curbs one block
// outside each long edge and lantern posts every lanternSpacing positions.
func Road(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	length := p.IntOr("length", 20)
	width := p.IntOr("width", 5)
	ax := axisOf(p.StringOr("direction", "x"))
	borders := p.BoolOr("borders", true)
	lanterns := p.BoolOr("lanterns", false)
	spacing := max(1, p.IntOr("lanternSpacing", 8))

	e := newEmitter(sink, o)
	for l := 0; l < length; l++ {
		for w := 0; w < width; w++ {
			bx, bz := ax.at(o.X, o.Z, l, w)
			e.place(bx, o.Y, bz, pal.Floor())
		}
	}
	if borders {
		for l := 0; l < length; l++ {
			block := pal.Foundation()
			if l%2 != 0 {
				block = pal.WallAccent()
			}
			x1, z1 := ax.at(o.X, o.Z, l, -1)
			x2, z2 := ax.at(o.X, o.Z, l, width)
			e.place(x1, o.Y, z1, block)
			e.place(x2, o.Y, z2, block)
		}
	}
	if lanterns {
		off := -1
		if borders {
			off = -2
		}
		for l := 0; l < length; l += spacing {
			px, pz := ax.at(o.X, o.Z, l, off)
			e.place(px, o.Y+1, pz, pal.WallAccent())
			e.place(px, o.Y+2, pz, pal.WallAccent())
			e.place(px, o.Y+3, pz, pal.Lantern())
		}
	}
	return e.result(KindRoad), nil
}
