package structure

import "structurebuilder.ai/internal/material"

// Tower extrudes a round or square shell around (x, z): a filled foundation,
// height wall layers, a mid-height floor, a roof at height+1 and an optional
// merlon ring above it. A two-high doorway is always cut on the south side.
func Tower(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	radius := p.IntOr("radius", 4)
	height := p.IntOr("height", 10)
	sq := p.StringOr("shape", "round") == "square"
	battlements := p.BoolOr("battlements", true)

	e := newEmitter(sink, o)
	layer := func(y, r int, block string, filled bool) {
		fn := func(dx, dz int) { e.place(o.X+dx, y, o.Z+dz, block) }
		if sq {
			square(r, filled, fn)
		} else {
			circle(r, filled, fn)
		}
	}

	layer(o.Y, radius, pal.Foundation(), true)
	for h := 1; h <= height; h++ {
		layer(o.Y+h, radius, pal.Wall(), false)
	}
	layer(o.Y+height/2, radius-1, pal.Floor(), true)
	roofY := o.Y + height + 1
	layer(roofY, radius, pal.Floor(), true)

	if battlements {
		y := roofY + 1
		if sq {
			square(radius, false, func(dx, dz int) {
				if (dx+dz+2*radius)%2 == 0 {
					e.place(o.X+dx, y, o.Z+dz, pal.WallAccent())
				}
			})
		} else {
			i := 0
			circle(radius, false, func(dx, dz int) {
				if i%2 == 0 {
					e.place(o.X+dx, y, o.Z+dz, pal.WallAccent())
				}
				i++
			})
		}
	}

	e.place(o.X, o.Y+1, o.Z+radius, material.Air)
	e.place(o.X, o.Y+2, o.Z+radius, material.Air)
	return e.result(KindTower), nil
}
