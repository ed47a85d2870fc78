package structure

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBBoxExtend(t *testing.T) {
	var b BBox
	if !b.Empty() {
		t.Fatalf("zero box should be empty")
	}
	b2 := b.Extend(Coord{1, 2, 3})
	if !b.Empty() {
		t.Fatalf("Extend must not mutate the receiver")
	}
	b2 = b2.Extend(Coord{-4, 5, 0})
	if b2.Min != (Coord{-4, 2, 0}) || b2.Max != (Coord{1, 5, 3}) {
		t.Fatalf("box=%+v", b2)
	}
	if !b2.Contains(Coord{0, 3, 1}) || b2.Contains(Coord{2, 3, 1}) {
		t.Fatalf("Contains mismatch")
	}
}

func TestEmitterEmptyReportsOrigin(t *testing.T) {
	sink := NewRecordingSink()
	res, err := Platform(Params{"x": 3, "y": 4, "z": 5, "width": 0}, testPalette(), sink)
	if err != nil {
		t.Fatalf("Platform: %v", err)
	}
	if res.BlocksPlaced != 0 || sink.Count() != 0 {
		t.Fatalf("expected no blocks, got %d", res.BlocksPlaced)
	}
	if !res.Box.Empty() || res.Box.Min != (Coord{3, 4, 5}) || res.Box.Max != (Coord{3, 4, 5}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestResultDocument(t *testing.T) {
	r := Result{
		Type:         KindHouse,
		BlocksPlaced: 12,
		Box:          BBox{}.Extend(Coord{0, 64, 0}).Extend(Coord{9, 72, 8}),
		Elapsed:      1500 * time.Microsecond,
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["status"] != "success" || doc["structureType"] != "house" {
		t.Fatalf("doc=%v", doc)
	}
	if doc["blocksPlaced"].(float64) != 12 || doc["buildTimeMs"].(float64) != 1 {
		t.Fatalf("doc=%v", doc)
	}
	box := doc["boundingBox"].(map[string]any)
	if box["minY"].(float64) != 64 || box["maxX"].(float64) != 9 || box["maxZ"].(float64) != 8 {
		t.Fatalf("boundingBox=%v", box)
	}
}
