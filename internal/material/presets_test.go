package material

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltins_OrderAndDefault(t *testing.T) {
	ps := Builtins()
	if got := strings.Join(ps.Names(), ","); got != "rustic_wood,stone_castle,cobblestone" {
		t.Fatalf("names=%s", got)
	}
	if ps.Default().Name() != StoneCastle {
		t.Fatalf("default=%s", ps.Default().Name())
	}
	rw, err := ps.Get(RusticWood)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rw.Wall() != "Wood_Softwood_Planks" || rw.Ladder() != DefaultLadder {
		t.Fatalf("rustic_wood=%+v", rw.Spec())
	}
	cb, _ := ps.Get(Cobblestone)
	if cb.Roof() != "Rock_Stone_Cobble" || cb.RoofTrim() != "Rock_Stone_Brick" {
		t.Fatalf("cobblestone=%+v", cb.Spec())
	}
}

func TestGet_UnknownIsRecoverable(t *testing.T) {
	_, err := Builtins().Get("marble")
	var upe *UnknownPresetError
	if !errors.As(err, &upe) {
		t.Fatalf("expected UnknownPresetError, got %v", err)
	}
	want := "Unknown material preset: marble. Available: rustic_wood, stone_castle, cobblestone"
	if err.Error() != want {
		t.Fatalf("message=%q", err.Error())
	}
	if upe.Code() != "E_UNKNOWN_MATERIAL" {
		t.Fatalf("code=%s", upe.Code())
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	p := New(Spec{Name: "bare", Wall: "X"})
	if p.Wall() != "X" || p.Foundation() != DefaultFoundation || p.Chest() != DefaultChest {
		t.Fatalf("spec=%+v", p.Spec())
	}
	s := p.Spec()
	s.Wall = "Y"
	if p.Wall() != "X" {
		t.Fatalf("palette mutated through Spec copy")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "materials.yaml")
	body := `palettes:
  - name: sandstone
    foundation: Rock_Sandstone
    wall: Rock_Sandstone_Brick
  - name: ice
    wall: Rock_Ice
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ps, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := strings.Join(ps.Names(), ","); got != "rustic_wood,stone_castle,cobblestone,sandstone,ice" {
		t.Fatalf("names=%s", got)
	}
	sand, err := ps.Get("sandstone")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sand.Wall() != "Rock_Sandstone_Brick" || sand.Roof() != DefaultRoof {
		t.Fatalf("sandstone=%+v", sand.Spec())
	}
	if _, err := Builtins().Get("sandstone"); err == nil {
		t.Fatalf("builtins were mutated")
	}
}

func TestLoadFile_Rejects(t *testing.T) {
	cases := map[string]string{
		"shadow":  "palettes:\n  - name: stone_castle\n    wall: X\n",
		"noname":  "palettes:\n  - wall: X\n",
		"dupe":    "palettes:\n  - name: a\n  - name: a\n",
		"garbage": "palettes: [",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if ps, err := LoadFile(""); err != nil || len(ps.Names()) != 3 {
		t.Fatalf("empty path should yield builtins: %v", err)
	}
}
