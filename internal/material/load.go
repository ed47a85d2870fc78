package material

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML shape of a materials file.
type File struct {
	Palettes []Spec `yaml:"palettes"`
}

// Parse decodes a materials file and builds its palettes.
func Parse(b []byte) ([]Palette, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("materials.yaml: %w", err)
	}
	out := make([]Palette, 0, len(f.Palettes))
	for i, s := range f.Palettes {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("materials.yaml: palettes[%d] missing name", i)
		}
		out = append(out, New(s))
	}
	return out, nil
}

// LoadFile extends the built-in presets with the palettes declared at path.
// An empty path yields the built-ins unchanged.
func LoadFile(path string) (Presets, error) {
	base := Builtins()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	extra, err := Parse(b)
	if err != nil {
		return base, err
	}
	ps, err := base.With(extra...)
	if err != nil {
		return base, fmt.Errorf("materials.yaml: %w", err)
	}
	return ps, nil
}
