package structure

import "structurebuilder.ai/internal/material"

// Well digs a round shaft depth blocks below y, rings it with wallHeight
// layers above ground and optionally covers it with a pyramid roof on four
// corner posts.
func Well(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	cx, y, cz := o.X, o.Y, o.Z
	radius := p.IntOr("radius", 2)
	wallHeight := p.IntOr("wallHeight", 3)
	roof := p.BoolOr("roof", true)
	roofHeight := p.IntOr("roofHeight", 3)
	shaft := p.IntOr("depth", 5)

	e := newEmitter(sink, o)
	circle(radius-1, true, func(dx, dz int) {
		e.place(cx+dx, y-shaft, cz+dz, pal.Foundation())
	})
	for h := -(shaft - 1); h < 0; h++ {
		circle(radius, false, func(dx, dz int) {
			e.place(cx+dx, y+h, cz+dz, pal.Wall())
		})
		circle(radius-1, true, func(dx, dz int) {
			e.place(cx+dx, y+h, cz+dz, material.Air)
		})
	}
	for h := 0; h < wallHeight; h++ {
		circle(radius, false, func(dx, dz int) {
			e.place(cx+dx, y+h, cz+dz, pal.Wall())
		})
	}

	if roof {
		base := y + wallHeight
		posts := [4][2]int{{cx - radius, cz - radius}, {cx + radius, cz - radius}, {cx - radius, cz + radius}, {cx + radius, cz + radius}}
		for _, post := range posts {
			for h := 0; h < roofHeight; h++ {
				e.place(post[0], base+h, post[1], pal.WallAccent())
			}
		}
		for layer := 0; layer <= roofHeight; layer++ {
			r := radius + 1 - layer
			if r < 0 {
				break
			}
			ry := base + roofHeight - 1 + layer
			square(r, true, func(dx, dz int) {
				block := pal.Roof()
				if abs(dx) == r || abs(dz) == r {
					block = pal.RoofTrim()
				}
				e.place(cx+dx, ry, cz+dz, block)
			})
		}
		e.place(cx, base+roofHeight-2, cz, pal.Lantern())
	}
	return e.result(KindWell), nil
}
