package structure

import "structurebuilder.ai/internal/material"

// Platform fills a width×depth×thickness box of foundation blocks extending
// +x/+y/+z from the origin.
func Platform(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	width := p.IntOr("width", 10)
	depth := p.IntOr("depth", 10)
	thickness := p.IntOr("thickness", 1)

	e := newEmitter(sink, o)
	for dy := 0; dy < thickness; dy++ {
		for dx := 0; dx < width; dx++ {
			for dz := 0; dz < depth; dz++ {
				e.place(o.X+dx, o.Y+dy, o.Z+dz, pal.Foundation())
			}
		}
	}
	return e.result(KindPlatform), nil
}

// Wall builds a length×height×thickness slab along x or z. End columns use the
// accent block; battlements put a merlon on every even position.
func Wall(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	length := p.IntOr("length", 10)
	height := p.IntOr("height", 5)
	thickness := p.IntOr("thickness", 1)
	ax := axisOf(p.StringOr("direction", "x"))
	battlements := p.BoolOr("battlements", true)

	e := newEmitter(sink, o)
	for h := 0; h < height; h++ {
		for l := 0; l < length; l++ {
			block := pal.Wall()
			if l == 0 || l == length-1 {
				block = pal.WallAccent()
			}
			for t := 0; t < thickness; t++ {
				bx, bz := ax.at(o.X, o.Z, l, t)
				e.place(bx, o.Y+h, bz, block)
			}
		}
	}
	if battlements {
		for l := 0; l < length; l += 2 {
			for t := 0; t < thickness; t++ {
				bx, bz := ax.at(o.X, o.Z, l, t)
				e.place(bx, o.Y+height, bz, pal.Wall())
			}
		}
	}
	return e.result(KindWall), nil
}
