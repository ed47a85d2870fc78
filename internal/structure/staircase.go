package structure

import "structurebuilder.ai/internal/material"

// spiralOffsets are the four step positions around the spiral column: +x, +z,
// -x, -z.
var spiralOffsets = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// Staircase climbs one block per step, either straight along an axis or as a
// spiral around a column centred two blocks in from the origin.
func Staircase(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	height := p.IntOr("height", 8)
	width := p.IntOr("width", 3)
	style := p.StringOr("style", "straight")
	ax := axisOf(p.StringOr("direction", "x"))
	railings := p.BoolOr("railings", true)

	e := newEmitter(sink, o)
	if style == "spiral" {
		spiral(e, o, height, width, pal)
	} else {
		for step := 0; step < height; step++ {
			stepY := o.Y + step
			for w := 0; w < width; w++ {
				bx, bz := ax.at(o.X, o.Z, step, w)
				e.place(bx, stepY, bz, pal.Floor())
				for fy := o.Y; fy < stepY; fy++ {
					e.place(bx, fy, bz, pal.Wall())
				}
			}
		}
		if railings {
			for step := 0; step < height; step++ {
				x1, z1 := ax.at(o.X, o.Z, step, 0)
				x2, z2 := ax.at(o.X, o.Z, step, width-1)
				e.place(x1, o.Y+step+1, z1, pal.WallAccent())
				e.place(x2, o.Y+step+1, z2, pal.WallAccent())
			}
		}
	}
	return e.result(KindStaircase), nil
}

func spiral(e *emitter, o Coord, height, width int, pal material.Palette) {
	cx, cz := o.X+2, o.Z+2
	for h := 0; h <= height; h++ {
		e.place(cx, o.Y+h, cz, pal.Wall())
	}
	ext := min(width-1, 2)
	for step := 0; step < height; step++ {
		dir := step % 4
		perp := spiralOffsets[(dir+1)%4]
		sx, sz := cx+spiralOffsets[dir][0], cz+spiralOffsets[dir][1]
		e.place(sx, o.Y+step, sz, pal.Floor())
		for w := 1; w < ext; w++ {
			e.place(sx+perp[0]*w, o.Y+step, sz+perp[1]*w, pal.Floor())
		}
	}
	top := o.Y + height
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			e.place(cx+dx, top, cz+dz, pal.Floor())
		}
	}
}
