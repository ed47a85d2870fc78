package main

import (
	"encoding/json"
	"strings"
	"testing"

	"structurebuilder.ai/internal/structure"
)

func TestParseArgs(t *testing.T) {
	args, err := parseArgs(`{"x": 1, "width": 9, "direction": "z"}`, []string{"y=64", "furniture=false", "x=-3", "name=north gate"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if args["y"] != 64 || args["furniture"] != false || args["x"] != -3 || args["name"] != "north gate" {
		t.Fatalf("args=%v", args)
	}
	if n, ok := args["width"].(json.Number); !ok || n.String() != "9" {
		t.Fatalf("width=%#v", args["width"])
	}

	// The generator parameter accessors accept every shape produced above.
	p := structure.Params(args)
	if w, err := p.Int("width"); err != nil || w != 9 {
		t.Fatalf("width=%d err=%v", w, err)
	}
	if p.BoolOr("furniture", true) {
		t.Fatalf("furniture should be false")
	}
}

func TestParseArgs_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kvs  []string
	}{
		{"bad json", `{"x":`, nil},
		{"json array", `[1,2]`, nil},
		{"no equals", "", []string{"width"}},
		{"empty key", "", []string{"=3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseArgs(tc.raw, tc.kvs); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDescribeError(t *testing.T) {
	msg := describeError(&structure.MissingParameterError{Name: "x"})
	if !strings.HasPrefix(msg, "E_MISSING_PARAMETER: ") || !strings.Contains(msg, "Missing required parameter: x") {
		t.Fatalf("msg=%q", msg)
	}
}
