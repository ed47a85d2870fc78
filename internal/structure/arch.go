package structure

import (
	"math"

	"structurebuilder.ai/internal/material"
)

// Arch builds a semicircular arch of the given width and total height,
// repeated over depth slices. direction is the passage axis: "z" spans the
// arch along X, anything else spans it along Z.
func Arch(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	width := p.IntOr("width", 5)
	height := p.IntOr("height", 7)
	depth := p.IntOr("depth", 2)
	span := axisZ
	if p.StringOr("direction", "z") == "z" {
		span = axisX
	}
	lanterns := p.BoolOr("lanterns", true)

	halfW := width / 2
	pillarH := max(1, height-halfW-1)
	// Centre of the curve; trim sits one above it on every slice.
	apex := pillarH + halfW

	e := newEmitter(sink, o)
	for d := 0; d < depth; d++ {
		lx, lz := span.at(o.X, o.Z, 0, d)
		rx, rz := span.at(o.X, o.Z, width-1, d)
		for h := 0; h < pillarH; h++ {
			e.place(lx, o.Y+h, lz, pal.WallAccent())
		}
		for h := 0; h < pillarH; h++ {
			e.place(rx, o.Y+h, rz, pal.WallAccent())
		}

		for i := 0; i < width; i++ {
			dx := float64(i - halfW)
			curve := math.Sqrt(math.Max(0, float64(halfW*halfW)-dx*dx))
			by := pillarH + int(math.Floor(curve+0.5))
			bx, bz := span.at(o.X, o.Z, i, d)
			e.place(bx, o.Y+by, bz, pal.Wall())
			if i == 0 || i == width-1 {
				for h := pillarH; h < by; h++ {
					e.place(bx, o.Y+h, bz, pal.WallAccent())
				}
			}
		}

		for i := 0; i < width; i++ {
			bx, bz := span.at(o.X, o.Z, i, d)
			e.place(bx, o.Y+apex+1, bz, pal.RoofTrim())
		}
	}

	if lanterns {
		x1, z1 := span.at(o.X, o.Z, 0, -1)
		x2, z2 := span.at(o.X, o.Z, width-1, -1)
		e.place(x1, o.Y+pillarH, z1, pal.Lantern())
		e.place(x2, o.Y+pillarH, z2, pal.Lantern())
	}
	return e.result(KindArch), nil
}
