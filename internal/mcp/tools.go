package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	toolBuildStructure   = "build_structure"
	toolCreateFlatWorld  = "create_flat_world"
	toolPreviewStructure = "preview_structure"
	toolListMaterials    = "list_materials"
	toolListStructures   = "list_structures"
	toolRecentBuilds     = "recent_builds"
)

type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	schema *jsonschema.Schema
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func strProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// flagProp accepts a JSON boolean or the strings "true"/"false".
func flagProp(desc string) map[string]any {
	return map[string]any{"type": []string{"boolean", "string"}, "description": desc}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func enumProp(desc string, values []string) map[string]any {
	p := strProp(desc)
	if len(values) > 0 {
		p["enum"] = values
	}
	return p
}

func structureProps(types, materials []string) map[string]any {
	return map[string]any{
		"type":     enumProp("Structure type", types),
		"material": enumProp("Material preset (default: stone_castle)", materials),

		"x": intProp("X coordinate"),
		"y": intProp("Y coordinate"),
		"z": intProp("Z coordinate"),

		"width":     intProp("Width in X (house 10, bridge 3, fence 20, arch 5, road 5)"),
		"depth":     intProp("Depth in Z (house 8, arch 2, well shaft 5, fence 20)"),
		"height":    intProp("Height (wall 5, tower 10, staircase 8, arch 7, fence 2)"),
		"length":    intProp("Length (wall 10, bridge 15, road 20)"),
		"direction": strProp("Direction: x or z (default x)"),
		"radius":    intProp("Radius (tower 4, well 2)"),
		"thickness": intProp("Thickness (wall, platform; default 1)"),

		"floors":      intProp("Number of floors (house, default 1)"),
		"floorHeight": intProp("Wall height per floor (house, default 4)"),
		"roofStyle":   strProp("Roof style: flat, gable, hip (house, default gable)"),
		"furniture":   flagProp("Add furniture (house, default true)"),
		"windows":     flagProp("Add windows (house, default true)"),
		"doorSide":    strProp("Door side: north, south, east, west (house, default south)"),

		"shape":       strProp("Shape: round, square (tower, default round)"),
		"battlements": flagProp("Add battlements (wall, tower; default true)"),

		"railings":       flagProp("Add railings (bridge, staircase; default true)"),
		"supports":       flagProp("Add support pillars (bridge, default true)"),
		"supportSpacing": intProp("Spacing between supports (bridge, default 5)"),
		"supportDepth":   intProp("Depth of support pillars (bridge, default 5)"),

		"style": strProp("Staircase style: straight, spiral (default straight)"),

		"gate":      flagProp("Add gate (fence, default true)"),
		"gateSide":  strProp("Gate side: north, south, east, west (fence, default south)"),
		"gateWidth": intProp("Gate width (fence, default 3)"),
		"posts":     flagProp("Add corner posts (fence, default true)"),

		"lanterns":       flagProp("Add lanterns (arch, road)"),
		"borders":        flagProp("Add border curbs (road, default true)"),
		"lanternSpacing": intProp("Spacing between lanterns (road, default 8)"),

		"wallHeight": intProp("Above-ground wall height (well, default 3)"),
		"roof":       flagProp("Add roof (well, default true)"),
		"roofHeight": intProp("Roof height (well, default 3)"),
	}
}

func flatWorldProps() map[string]any {
	return map[string]any{
		"x":            intProp("Center X coordinate"),
		"z":            intProp("Center Z coordinate"),
		"radius":       intProp("Half-size of the area (default 100); area is (2*radius+1)^2"),
		"surfaceY":     intProp("Height of the surface layer (default 64)"),
		"depth":        intProp("Depth of terrain fill below surface (default 10)"),
		"clearHeight":  intProp("Height above surface to clear (default 60)"),
		"surfaceBlock": strProp("Block type for the surface layer"),
		"dirtBlock":    strProp("Block type for the sub-surface dirt layer"),
		"stoneBlock":   strProp("Block type for the deep stone layer"),
	}
}

// buildTools returns the tool set in listing order, with every input schema
// compiled.
func buildTools(types, materials []string) ([]toolDef, error) {
	types = append([]string(nil), types...)
	materials = append([]string(nil), materials...)
	sort.Strings(materials)

	preview := structureProps(types, materials)
	preview["placements"] = flagProp("Include every placement in emission order")

	defs := []toolDef{
		{
			Name: toolBuildStructure,
			Description: "Builds a complete structure at the given position with a single server-side call. " +
				"Types: house, tower, wall, platform, bridge, staircase, fence, arch, road, well, flat_world.",
			InputSchema: objectSchema(structureProps(types, materials), "type"),
		},
		{
			Name: toolCreateFlatWorld,
			Description: "Creates a flat area: stone, dirt and surface layers, with everything above cleared. " +
				"Replaces all existing terrain in the area.",
			InputSchema: objectSchema(flatWorldProps()),
		},
		{
			Name:        toolPreviewStructure,
			Description: "Generates a structure without touching the world and returns its footprint and block counts.",
			InputSchema: objectSchema(preview, "type"),
		},
		{
			Name:        toolListMaterials,
			Description: "Lists the material presets and the block used for each role.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}, "additionalProperties": false},
		},
		{
			Name:        toolListStructures,
			Description: "Lists the structure types this server can build.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}, "additionalProperties": false},
		},
		{
			Name:        toolRecentBuilds,
			Description: "Lists recent builds, newest first.",
			InputSchema: objectSchema(map[string]any{
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 1000},
				"type":  strProp("Only builds of this structure type"),
				"actor": strProp("Only builds requested by this agent"),
			}),
		},
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	for i := range defs {
		b, err := json.Marshal(defs[i].InputSchema)
		if err != nil {
			return nil, err
		}
		url := "mem://tools/" + defs[i].Name + ".json"
		if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", defs[i].Name, err)
		}
		s, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", defs[i].Name, err)
		}
		defs[i].schema = s
	}
	return defs, nil
}

// decodeArgs validates raw tool arguments and returns them as a generic map.
// Numbers are decoded as json.Number so large coordinates survive intact.
func (t toolDef) decodeArgs(raw json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := t.schema.Validate(v); err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be an object")
	}
	return m, nil
}
