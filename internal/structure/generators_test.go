package structure

import (
	"testing"

	"structurebuilder.ai/internal/material"
)

func TestPlatform_FiveByFive(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, err := Platform(at(map[string]any{"width": 5, "depth": 5, "thickness": 1}), pal, sink)
	if err != nil {
		t.Fatalf("Platform: %v", err)
	}
	if res.BlocksPlaced != 25 || sink.CountType(pal.Foundation()) != 25 {
		t.Fatalf("placed=%d foundation=%d", res.BlocksPlaced, sink.CountType(pal.Foundation()))
	}
	if res.Box.Min != (Coord{0, 64, 0}) || res.Box.Max != (Coord{4, 64, 4}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestWall_DefaultsWithBattlements(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, err := Wall(at(nil), pal, sink)
	if err != nil {
		t.Fatalf("Wall: %v", err)
	}
	if res.BlocksPlaced != 55 {
		t.Fatalf("placed=%d want 55", res.BlocksPlaced)
	}
	if got := sink.CountType(pal.WallAccent()); got != 10 {
		t.Fatalf("accent end columns=%d want 10", got)
	}
	for l := 0; l < 10; l++ {
		has := sink.HasBlockAt(l, 69, 0, pal.Wall())
		if has != (l%2 == 0) {
			t.Fatalf("merlon at %d = %v", l, has)
		}
	}
	if res.Box.Max != (Coord{9, 69, 0}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestWall_AlongZ(t *testing.T) {
	sink := NewRecordingSink()
	res, _ := Wall(at(map[string]any{"direction": "z", "length": 4, "height": 1, "battlements": false}), testPalette(), sink)
	if res.BlocksPlaced != 4 || res.Box.Max != (Coord{0, 64, 3}) {
		t.Fatalf("res=%+v", res)
	}
}

func TestBridge_DeckAndRailings(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, err := Bridge(at(map[string]any{"length": 10, "width": 3, "railings": false, "supports": false}), pal, sink)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}
	if res.BlocksPlaced != 30 {
		t.Fatalf("deck=%d want 30", res.BlocksPlaced)
	}

	sink = NewRecordingSink()
	res, _ = Bridge(at(map[string]any{"length": 10, "width": 3, "railings": true, "supports": false}), pal, sink)
	if res.BlocksPlaced != 50 {
		t.Fatalf("deck+railings=%d want 50", res.BlocksPlaced)
	}
	for _, p := range sink.Placements() {
		if p.Block == pal.WallAccent() && p.Pos.Y != 65 {
			t.Fatalf("railing at y=%d", p.Pos.Y)
		}
	}
	if res.Box.Max.Y != 65 {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestBridge_Supports(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Bridge(at(map[string]any{"length": 11, "width": 3, "railings": false, "supportSpacing": 5, "supportDepth": 2}), pal, sink)
	// supports at l=0,5,10; two edges; two deep
	if got := sink.CountType(pal.Foundation()); got != 12 {
		t.Fatalf("support blocks=%d want 12", got)
	}
	if !sink.HasBlockAt(10, 62, 2, pal.Foundation()) || res.Box.Min.Y != 62 {
		t.Fatalf("missing deepest support, box=%+v", res.Box)
	}

	sink = NewRecordingSink()
	res, _ = Bridge(at(map[string]any{"length": 3, "width": 1, "railings": false, "supportSpacing": 0, "supportDepth": 1}), pal, sink)
	if got := sink.CountType(pal.Foundation()); got != 6 {
		t.Fatalf("zero spacing supports=%d want 6", got)
	}
}

func TestTower_SquareBattlementsAndDoor(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, err := Tower(at(map[string]any{"shape": "square", "radius": 2, "height": 4}), pal, sink)
	if err != nil {
		t.Fatalf("Tower: %v", err)
	}
	merlons := 0
	for _, p := range sink.Placements() {
		if p.Block != pal.WallAccent() {
			continue
		}
		merlons++
		if p.Pos.Y != 70 {
			t.Fatalf("merlon at y=%d want 70", p.Pos.Y)
		}
	}
	if merlons != 8 {
		t.Fatalf("merlons=%d want 8", merlons)
	}
	for _, y := range []int{65, 66} {
		if b, _ := sink.BlockAt(0, y, 2); b != material.Air {
			t.Fatalf("door at y=%d is %q", y, b)
		}
	}
	// foundation 25, walls 4*16, mid floor 9, roof 25, merlons 8, door 2
	if res.BlocksPlaced != 25+64+9+25+8+2 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if res.Box.Min != (Coord{-2, 64, -2}) || res.Box.Max != (Coord{2, 70, 2}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestTower_RoundWithoutBattlements(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Tower(at(map[string]any{"radius": 2, "height": 2, "battlements": false}), pal, sink)
	// disc r=2 has 13 cells, its ring 8, r=1 disc 5
	if res.BlocksPlaced != 13+2*8+5+13+2 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if sink.HasType(pal.WallAccent()) {
		t.Fatalf("unexpected merlons")
	}
	if res.Box.Max.Y != 67 {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestHouse_DefaultGable(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, err := House(at(nil), pal, sink)
	if err != nil {
		t.Fatalf("House: %v", err)
	}
	for _, y := range []int{65, 66, 67} {
		if !sink.HasBlockAt(5, y, 7, material.Air) {
			t.Fatalf("door missing at y=%d", y)
		}
	}
	if !sink.HasBlockAt(5, 64, 8, pal.Foundation()) {
		t.Fatalf("door step missing")
	}
	if !sink.HasBlockAt(2, 65, 2, pal.Table()) || !sink.HasBlockAt(7, 65, 5, pal.Bed()) || !sink.HasBlockAt(1, 65, 1, pal.Chest()) {
		t.Fatalf("furniture missing")
	}
	if sink.HasType(pal.Ladder()) {
		t.Fatalf("single floor house has a ladder")
	}
	// gable layer 4 of a depth-8 roof is empty, so the ridge is at 69+3
	if res.Box.Min != (Coord{0, 64, 0}) || res.Box.Max != (Coord{9, 72, 8}) {
		t.Fatalf("box=%+v", res.Box)
	}
	if !sink.HasBlockAt(0, 70, 2, pal.Wall()) || !sink.HasBlockAt(0, 69, 0, pal.RoofTrim()) || sink.HasAnyBlockAt(0, 69, 1) {
		t.Fatalf("gable end wall mismatch")
	}
}

func TestHouse_TogglesAreIndependent(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	House(at(map[string]any{"windows": false, "furniture": true}), pal, sink)
	if got := sink.CountType(material.Air); got != 3 {
		t.Fatalf("air=%d want only the door", got)
	}
	if !sink.HasType(pal.Table()) {
		t.Fatalf("furniture should stay on")
	}

	sink = NewRecordingSink()
	House(at(map[string]any{"windows": true, "furniture": false}), pal, sink)
	if sink.HasType(pal.Table()) || sink.HasType(pal.Lantern()) {
		t.Fatalf("furniture should be off")
	}
	// 10x8 walls get two windows per side
	if got := sink.CountType(material.Air); got != 3+2*(2+2+2+2) {
		t.Fatalf("air=%d", got)
	}
}

func TestHouse_MultiFloorLadderAndHipRoof(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := House(at(map[string]any{"floors": 2, "roofStyle": "hip", "furniture": false, "windows": false}), pal, sink)
	if got := sink.CountType(pal.Ladder()); got != 8 {
		t.Fatalf("ladder=%d want 8", got)
	}
	// slab between floors at 64+1+4
	if !sink.HasBlockAt(4, 69, 4, pal.Floor()) {
		t.Fatalf("inter-floor slab missing")
	}
	// roof base 64+1+5+4=74; hip layers 10x8, 8x6, 6x4, 4x2
	if res.Box.Max.Y != 77 {
		t.Fatalf("box=%+v", res.Box)
	}
	top := 0
	for _, p := range sink.Placements() {
		if p.Pos.Y == 77 {
			top++
		}
	}
	if top != 8 {
		t.Fatalf("top hip layer=%d want 8", top)
	}
}

func TestHouse_DoorSides(t *testing.T) {
	pal := testPalette()
	cases := []struct {
		side         string
		doorX, doorZ int
		stepX, stepZ int
	}{
		{"north", 5, 0, 5, -1},
		{"east", 9, 4, 10, 4},
		{"west", 0, 4, -1, 4},
		{"south", 5, 7, 5, 8},
		{"bogus", 5, 7, 5, 8},
	}
	for _, c := range cases {
		sink := NewRecordingSink()
		res, _ := House(at(map[string]any{"doorSide": c.side, "furniture": false}), pal, sink)
		if !sink.HasBlockAt(c.doorX, 65, c.doorZ, material.Air) {
			t.Fatalf("%s: door missing", c.side)
		}
		if !sink.HasBlockAt(c.stepX, 64, c.stepZ, pal.Foundation()) {
			t.Fatalf("%s: step missing", c.side)
		}
		checkInvariants(t, sink, res)
	}
}

func TestStaircase_Straight(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Staircase(at(map[string]any{"height": 3, "width": 2, "railings": false}), pal, sink)
	if res.BlocksPlaced != 12 || sink.CountType(pal.Floor()) != 6 || sink.CountType(pal.Wall()) != 6 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	sink = NewRecordingSink()
	res, _ = Staircase(at(map[string]any{"height": 3, "width": 2}), pal, sink)
	if res.BlocksPlaced != 18 || !sink.HasBlockAt(2, 67, 1, pal.WallAccent()) {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
}

func TestStaircase_Spiral(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Staircase(at(map[string]any{"style": "spiral", "height": 4, "width": 3}), pal, sink)
	// column 5, four steps with one extension each, landing 8
	if res.BlocksPlaced != 5+8+8 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if !sink.HasBlockAt(3, 64, 2, pal.Floor()) || !sink.HasBlockAt(2, 65, 3, pal.Floor()) {
		t.Fatalf("spiral steps misplaced")
	}
	if sink.HasBlockAt(2, 68, 2, pal.Floor()) {
		t.Fatalf("landing must skip the column")
	}
	if res.Box.Min != (Coord{1, 64, 1}) || res.Box.Max != (Coord{3, 68, 3}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestFence_SouthGate(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Fence(at(map[string]any{"width": 5, "depth": 5, "height": 1, "gateWidth": 1}), pal, sink)
	if res.BlocksPlaced != 15+8+8+1 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if sink.HasBlockAt(2, 64, 4, pal.Wall()) {
		t.Fatalf("gate span has a wall block")
	}
	if !sink.HasBlockAt(2, 64, 4, pal.Foundation()) {
		t.Fatalf("threshold missing")
	}
	if !sink.HasBlockAt(1, 67, 4, pal.Lantern()) || !sink.HasBlockAt(3, 67, 4, pal.Lantern()) {
		t.Fatalf("gate lanterns missing")
	}
	if res.Box.Max != (Coord{4, 67, 4}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestFence_NoGate(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Fence(at(map[string]any{"width": 4, "depth": 3, "height": 1, "gate": false, "posts": false}), pal, sink)
	if res.BlocksPlaced != 4+4+1+1 || sink.HasType(pal.Lantern()) {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
}

func TestArch_Defaults(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Arch(at(nil), pal, sink)
	// per slice: 2x4 pillar, 5 curve, 5 trim; plus two lanterns
	if res.BlocksPlaced != 2*18+2 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if !sink.HasBlockAt(2, 70, 0, pal.Wall()) || !sink.HasBlockAt(0, 68, 1, pal.Wall()) {
		t.Fatalf("curve misplaced")
	}
	if !sink.HasBlockAt(0, 68, -1, pal.Lantern()) || !sink.HasBlockAt(4, 68, -1, pal.Lantern()) {
		t.Fatalf("lanterns misplaced")
	}
	if res.Box.Min != (Coord{0, 64, -1}) || res.Box.Max != (Coord{4, 71, 1}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestArch_TrimLevelAcrossSlices(t *testing.T) {
	pal := material.New(material.Spec{Name: "t", WallAccent: "A", RoofTrim: "T", Wall: "W"})
	sink := NewRecordingSink()
	Arch(at(map[string]any{"depth": 4, "lanterns": false}), pal, sink)
	trims := 0
	for _, p := range sink.Placements() {
		if p.Block != "T" {
			continue
		}
		trims++
		if p.Pos.Y != 71 {
			t.Fatalf("trim at y=%d", p.Pos.Y)
		}
	}
	if trims != 20 {
		t.Fatalf("trim=%d want 20", trims)
	}
}

func TestArch_EvenWidthFillsEdge(t *testing.T) {
	pal := material.New(material.Spec{Name: "t", WallAccent: "A", RoofTrim: "T", Wall: "W"})
	sink := NewRecordingSink()
	res, _ := Arch(at(map[string]any{"width": 4, "height": 6, "depth": 1, "direction": "x", "lanterns": false}), pal, sink)
	// halfW 2, pillar 3: right edge (i=3) curves up two layers
	if !sink.HasBlockAt(0, 67, 3, "A") || !sink.HasBlockAt(0, 68, 3, "A") || !sink.HasBlockAt(0, 69, 3, "W") {
		t.Fatalf("edge fill missing")
	}
	if res.Box.Max != (Coord{0, 70, 3}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestRoad_BordersAndLanterns(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Road(at(map[string]any{"length": 4, "width": 2, "lanterns": true, "lanternSpacing": 2}), pal, sink)
	if res.BlocksPlaced != 8+8+6 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if !sink.HasBlockAt(0, 64, -1, pal.Foundation()) || !sink.HasBlockAt(1, 64, 2, pal.WallAccent()) {
		t.Fatalf("border pattern mismatch")
	}
	if !sink.HasBlockAt(2, 67, -2, pal.Lantern()) {
		t.Fatalf("lantern missing")
	}
	if res.Box.Min != (Coord{0, 64, -2}) || res.Box.Max != (Coord{3, 67, 2}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestWell_Defaults(t *testing.T) {
	pal := testPalette()
	sink := NewRecordingSink()
	res, _ := Well(at(nil), pal, sink)
	// floor 5, shaft 4*(8+5), ring 3*8, posts 12, roof 49+25+9+1, lantern
	if res.BlocksPlaced != 5+52+24+12+84+1 {
		t.Fatalf("placed=%d", res.BlocksPlaced)
	}
	if b, _ := sink.BlockAt(0, 62, 0); b != material.Air {
		t.Fatalf("shaft interior=%q", b)
	}
	if !sink.HasBlockAt(0, 68, 0, pal.Lantern()) {
		t.Fatalf("lantern missing")
	}
	if res.Box.Min != (Coord{-3, 59, -3}) || res.Box.Max != (Coord{3, 72, 3}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestFlatWorld_Layers(t *testing.T) {
	sink := NewRecordingSink()
	res, err := FlatWorld(Params{"x": 0, "z": 0, "radius": 2, "surfaceY": 10, "depth": 5, "clearHeight": 3}, testPalette(), sink)
	if err != nil {
		t.Fatalf("FlatWorld: %v", err)
	}
	if res.BlocksPlaced != 225 {
		t.Fatalf("placed=%d want 225", res.BlocksPlaced)
	}
	types := sink.Types()
	if types[DefaultStoneBlock] != 50 || types[DefaultDirtBlock] != 100 || types[material.Air] != 75 {
		t.Fatalf("types=%v", types)
	}
	if res.Box.Min != (Coord{-2, 5, -2}) || res.Box.Max != (Coord{2, 13, 2}) {
		t.Fatalf("box=%+v", res.Box)
	}
}

func TestFlatWorld_IgnoresY(t *testing.T) {
	sink := NewRecordingSink()
	res, err := FlatWorld(Params{"x": 1, "y": 20, "z": 1, "radius": 0, "depth": 0, "clearHeight": 0, "surfaceBlock": "Soil_Grass"}, testPalette(), sink)
	if err != nil {
		t.Fatalf("FlatWorld: %v", err)
	}
	if res.BlocksPlaced != 1 || !sink.HasBlockAt(1, 64, 1, "Soil_Grass") || sink.HasAnyBlockAt(1, 20, 1) {
		t.Fatalf("placements=%v", sink.Placements())
	}
	if _, err := FlatWorld(Params{"x": 1}, testPalette(), NewRecordingSink()); err == nil || err.Error() != "Missing required parameter: z" {
		t.Fatalf("err=%v", err)
	}
}
