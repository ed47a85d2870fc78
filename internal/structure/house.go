package structure

import "structurebuilder.ai/internal/material"

// House builds a foundation, one or more walled floors, a roof and a door
// step. Width runs along X and depth along Z.
func House(p Params, pal material.Palette, sink BlockSink) (Result, error) {
	o, err := origin(p)
	if err != nil {
		return Result{}, err
	}
	h := house{
		x:           o.X,
		y:           o.Y,
		z:           o.Z,
		width:       p.IntOr("width", 10),
		depth:       p.IntOr("depth", 8),
		floors:      p.IntOr("floors", 1),
		floorHeight: p.IntOr("floorHeight", 4),
		roofStyle:   p.StringOr("roofStyle", "gable"),
		doorSide:    p.StringOr("doorSide", "south"),
		pal:         pal,
		e:           newEmitter(sink, o),
	}
	furniture := p.BoolOr("furniture", true)
	windows := p.BoolOr("windows", true)

	for x := 0; x < h.width; x++ {
		for z := 0; z < h.depth; z++ {
			h.e.place(h.x+x, h.y, h.z+z, pal.Foundation())
		}
	}

	baseY := h.y + 1
	for floor := 0; floor < h.floors; floor++ {
		h.walls(baseY)
		if windows {
			h.windows(baseY)
		}
		if floor == 0 {
			dx, dz := h.doorAt()
			for i := 0; i < 3; i++ {
				h.e.place(dx, baseY+i, dz, material.Air)
			}
		}
		if floor < h.floors-1 {
			h.slab(baseY + h.floorHeight)
		}
		if furniture && floor == 0 {
			h.furniture(baseY)
		}
		if h.floors > 1 {
			for i := 0; i < h.floorHeight; i++ {
				h.e.place(h.x+h.width-2, baseY+i, h.z+1, pal.Ladder())
			}
		}
		baseY += h.floorHeight + 1
	}

	roofY := h.y + 1 + (h.floors-1)*(h.floorHeight+1) + h.floorHeight
	switch h.roofStyle {
	case "flat":
		h.flatRoof(roofY)
	case "hip":
		h.hipRoof(roofY)
	default:
		h.gableRoof(roofY)
	}

	sx, sz := h.stepAt()
	h.e.place(sx, h.y, sz, pal.Foundation())
	return h.e.result(KindHouse), nil
}

type house struct {
	x, y, z             int
	width, depth        int
	floors, floorHeight int
	roofStyle, doorSide string
	pal                 material.Palette
	e                   *emitter
}

func (h *house) walls(baseY int) {
	for i := 0; i < h.floorHeight; i++ {
		for dx := 0; dx < h.width; dx++ {
			for dz := 0; dz < h.depth; dz++ {
				edgeX := dx == 0 || dx == h.width-1
				edgeZ := dz == 0 || dz == h.depth-1
				if !edgeX && !edgeZ {
					continue
				}
				block := h.pal.Wall()
				if edgeX && edgeZ {
					block = h.pal.WallAccent()
				}
				h.e.place(h.x+dx, baseY+i, h.z+dz, block)
			}
		}
	}
}

// windows cuts two-high openings every third cell on each wall, starting two
// cells in from the corners. Walls shorter than three blocks get none.
func (h *house) windows(baseY int) {
	if h.floorHeight < 3 {
		return
	}
	cut := func(x, z int) {
		h.e.place(x, baseY+1, z, material.Air)
		h.e.place(x, baseY+2, z, material.Air)
	}
	for dx := 2; dx < h.width-2; dx += 3 {
		cut(h.x+dx, h.z)
	}
	for dx := 2; dx < h.width-2; dx += 3 {
		cut(h.x+dx, h.z+h.depth-1)
	}
	for dz := 2; dz < h.depth-2; dz += 3 {
		cut(h.x, h.z+dz)
	}
	for dz := 2; dz < h.depth-2; dz += 3 {
		cut(h.x+h.width-1, h.z+dz)
	}
}

func (h *house) doorAt() (int, int) {
	switch h.doorSide {
	case "north":
		return h.x + h.width/2, h.z
	case "east":
		return h.x + h.width - 1, h.z + h.depth/2
	case "west":
		return h.x, h.z + h.depth/2
	default:
		return h.x + h.width/2, h.z + h.depth - 1
	}
}

// stepAt is the cell just outside the door.
func (h *house) stepAt() (int, int) {
	switch h.doorSide {
	case "north":
		return h.x + h.width/2, h.z - 1
	case "east":
		return h.x + h.width, h.z + h.depth/2
	case "west":
		return h.x - 1, h.z + h.depth/2
	default:
		return h.x + h.width/2, h.z + h.depth
	}
}

func (h *house) slab(y int) {
	for dx := 0; dx < h.width; dx++ {
		for dz := 0; dz < h.depth; dz++ {
			h.e.place(h.x+dx, y, h.z+dz, h.pal.Floor())
		}
	}
}

func (h *house) furniture(y int) {
	ix, iz := h.x+2, h.z+2
	big := h.width >= 6 && h.depth >= 6
	if big {
		h.e.place(ix, y, iz, h.pal.Table())
		h.e.place(ix+1, y, iz, h.pal.Chair())
		h.e.place(ix-1, y, iz, h.pal.Chair())
		h.e.place(h.x+h.width-3, y, h.z+h.depth-3, h.pal.Bed())
	}
	h.e.place(ix, y, h.z+h.depth-3, h.pal.Lantern())
	if h.width >= 8 {
		h.e.place(h.x+1, y, h.z+1, h.pal.Chest())
	}
}

func (h *house) trimOr(edge bool) string {
	if edge {
		return h.pal.RoofTrim()
	}
	return h.pal.Roof()
}

func (h *house) flatRoof(y int) {
	for dx := 0; dx < h.width; dx++ {
		for dz := 0; dz < h.depth; dz++ {
			edge := dx == 0 || dx == h.width-1 || dz == 0 || dz == h.depth-1
			h.e.place(h.x+dx, y, h.z+dz, h.trimOr(edge))
		}
	}
}

// hipRoof stacks layers inset by one on every side until either dimension
// runs out. Non-square footprints end on a thin ridge layer.
func (h *house) hipRoof(y int) {
	w, d := h.width, h.depth
	for layer := 0; w > 0 && d > 0; layer++ {
		for dx := 0; dx < w; dx++ {
			for dz := 0; dz < d; dz++ {
				edge := dx == 0 || dx == w-1 || dz == 0 || dz == d-1
				h.e.place(h.x+layer+dx, y+layer, h.z+layer+dz, h.trimOr(edge))
			}
		}
		w -= 2
		d -= 2
	}
}

// gableRoof steps in from both depth ends one row per layer, so the ridge
// runs along X. End walls fill the triangle under each layer above the first.
func (h *house) gableRoof(y int) {
	for layer := 0; layer <= h.depth/2; layer++ {
		ly := y + layer
		zs := h.z + layer
		ze := h.z + h.depth - 1 - layer
		for dx := 0; dx < h.width; dx++ {
			if zs > ze {
				break
			}
			block := h.trimOr(dx == 0 || dx == h.width-1)
			h.e.place(h.x+dx, ly, zs, block)
			if zs != ze {
				h.e.place(h.x+dx, ly, ze, block)
			}
		}
		if layer > 0 && zs < ze {
			for dz := zs + 1; dz < ze; dz++ {
				h.e.place(h.x, ly, dz, h.pal.Wall())
				h.e.place(h.x+h.width-1, ly, dz, h.pal.Wall())
			}
		}
	}
}
