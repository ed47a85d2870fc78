package structure

import "structurebuilder.ai/internal/material"

const (
	DefaultStoneBlock   = "Rock_Stone_Cobble"
	DefaultDirtBlock    = "Soil_Dirt"
	DefaultSurfaceBlock = "Soil_Dirt"
)

// FlatWorld levels a square of the given radius around (x, z): stone below,
// up to three layers of dirt, one surface layer at surfaceY, and air for
// clearHeight blocks above. y is not read; the surface height comes from
// surfaceY alone. Terrain blocks come from parameters; the palette is not
// consulted.
func FlatWorld(p Params, _ material.Palette, sink BlockSink) (Result, error) {
	cx, err := p.Int("x")
	if err != nil {
		return Result{}, err
	}
	cz, err := p.Int("z")
	if err != nil {
		return Result{}, err
	}
	radius := p.IntOr("radius", 100)
	surfaceY := p.IntOr("surfaceY", 64)
	depth := p.IntOr("depth", 10)
	clearH := p.IntOr("clearHeight", 60)
	stone := p.StringOr("stoneBlock", DefaultStoneBlock)
	dirt := p.StringOr("dirtBlock", DefaultDirtBlock)
	surface := p.StringOr("surfaceBlock", DefaultSurfaceBlock)

	bottom := surfaceY - depth
	dirtStart := surfaceY - min(3, depth)

	e := newEmitter(sink, Coord{X: cx, Y: surfaceY, Z: cz})
	for x := cx - radius; x <= cx+radius; x++ {
		for z := cz - radius; z <= cz+radius; z++ {
			for y := bottom; y < dirtStart; y++ {
				e.place(x, y, z, stone)
			}
			for y := dirtStart; y < surfaceY; y++ {
				e.place(x, y, z, dirt)
			}
			e.place(x, surfaceY, z, surface)
			for y := surfaceY + 1; y <= surfaceY+clearH; y++ {
				e.place(x, y, z, material.Air)
			}
		}
	}
	return e.result(KindFlatWorld), nil
}
