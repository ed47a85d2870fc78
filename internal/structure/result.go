package structure

import (
	"encoding/json"
	"time"

	"structurebuilder.ai/internal/protocol"
)

// BBox is an axis-aligned box folded over emitted coordinates. The zero value
// is empty; Extend returns a new box and never mutates the receiver.
type BBox struct {
	Min, Max Coord
	nonEmpty bool
}

func (b BBox) Extend(c Coord) BBox {
	if !b.nonEmpty {
		return BBox{Min: c, Max: c, nonEmpty: true}
	}
	b.Min.X = min(b.Min.X, c.X)
	b.Min.Y = min(b.Min.Y, c.Y)
	b.Min.Z = min(b.Min.Z, c.Z)
	b.Max.X = max(b.Max.X, c.X)
	b.Max.Y = max(b.Max.Y, c.Y)
	b.Max.Z = max(b.Max.Z, c.Z)
	return b
}

func (b BBox) Empty() bool { return !b.nonEmpty }

func (b BBox) Contains(c Coord) bool {
	return b.nonEmpty &&
		c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

// Result summarizes one generation call.
type Result struct {
	Type         Kind
	BlocksPlaced int
	Box          BBox
	Elapsed      time.Duration
}

func (r Result) Document() protocol.BuildDocument {
	return protocol.BuildDocument{
		Status:        protocol.StatusSuccess,
		StructureType: r.Type.String(),
		BlocksPlaced:  r.BlocksPlaced,
		BuildTimeMs:   r.Elapsed.Milliseconds(),
		BoundingBox: protocol.BoundingBox{
			MinX: r.Box.Min.X, MinY: r.Box.Min.Y, MinZ: r.Box.Min.Z,
			MaxX: r.Box.Max.X, MaxY: r.Box.Max.Y, MaxZ: r.Box.Max.Z,
		},
	}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}

// emitter routes every command of one generation through the sink while
// folding the bounding box and counting what it forwarded.
type emitter struct {
	sink   BlockSink
	origin Coord
	box    BBox
	n      int
	start  time.Time
}

func newEmitter(sink BlockSink, origin Coord) *emitter {
	return &emitter{sink: sink, origin: origin, start: time.Now()}
}

func (e *emitter) place(x, y, z int, block string) {
	e.sink.Place(x, y, z, block)
	e.box = e.box.Extend(Coord{X: x, Y: y, Z: z})
	e.n++
}

// result closes the generation. A generation that emitted nothing reports a
// degenerate box at its origin.
func (e *emitter) result(k Kind) Result {
	box := e.box
	if box.Empty() {
		box.Min, box.Max = e.origin, e.origin
	}
	return Result{Type: k, BlocksPlaced: e.n, Box: box, Elapsed: time.Since(e.start)}
}
