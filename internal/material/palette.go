package material

// Air is the empty block id shared by every palette. Generators write it to
// carve openings (doors, windows, shaft interiors) and to clear terrain.
const Air = "Empty"

// Default block ids for roles a Spec leaves blank.
const (
	DefaultFoundation = "Rock_Stone_Cobble"
	DefaultWall       = "Rock_Stone_Brick"
	DefaultWallAccent = "Wood_Softwood_Beam"
	DefaultFloor      = "Wood_Softwood_Planks"
	DefaultCeiling    = "Wood_Softwood_Planks"
	DefaultRoof       = "Wood_Softwood_Planks"
	DefaultRoofTrim   = "Wood_Softwood_Beam"
	DefaultTable      = "Furniture_Lumberjack_Table"
	DefaultChair      = "Furniture_Lumberjack_Chair"
	DefaultBed        = "Furniture_Lumberjack_Bed"
	DefaultLantern    = "Furniture_Lumberjack_Lantern"
	DefaultChest      = "Furniture_Lumberjack_Chest_Large"
	DefaultWardrobe   = "Furniture_Lumberjack_Wardrobe"
	DefaultLadder     = "Furniture_Lumberjack_Ladder"
)

// Spec is the construction input for a Palette. It doubles as the YAML shape of
// a palette entry in a materials file.
type Spec struct {
	Name       string `yaml:"name" json:"name"`
	Foundation string `yaml:"foundation,omitempty" json:"foundation,omitempty"`
	Wall       string `yaml:"wall,omitempty" json:"wall,omitempty"`
	WallAccent string `yaml:"wall_accent,omitempty" json:"wall_accent,omitempty"`
	Floor      string `yaml:"floor,omitempty" json:"floor,omitempty"`
	Ceiling    string `yaml:"ceiling,omitempty" json:"ceiling,omitempty"`
	Roof       string `yaml:"roof,omitempty" json:"roof,omitempty"`
	RoofTrim   string `yaml:"roof_trim,omitempty" json:"roof_trim,omitempty"`
	Table      string `yaml:"table,omitempty" json:"table,omitempty"`
	Chair      string `yaml:"chair,omitempty" json:"chair,omitempty"`
	Bed        string `yaml:"bed,omitempty" json:"bed,omitempty"`
	Lantern    string `yaml:"lantern,omitempty" json:"lantern,omitempty"`
	Chest      string `yaml:"chest,omitempty" json:"chest,omitempty"`
	Wardrobe   string `yaml:"wardrobe,omitempty" json:"wardrobe,omitempty"`
	Ladder     string `yaml:"ladder,omitempty" json:"ladder,omitempty"`
}

// Palette is a named, immutable bundle of block ids, one per structural role.
// The zero value is not useful; build palettes with New.
type Palette struct {
	s Spec
}

// New builds a palette in one step. Roles left empty in s take the default ids.
func New(s Spec) Palette {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Foundation, DefaultFoundation)
	fill(&s.Wall, DefaultWall)
	fill(&s.WallAccent, DefaultWallAccent)
	fill(&s.Floor, DefaultFloor)
	fill(&s.Ceiling, DefaultCeiling)
	fill(&s.Roof, DefaultRoof)
	fill(&s.RoofTrim, DefaultRoofTrim)
	fill(&s.Table, DefaultTable)
	fill(&s.Chair, DefaultChair)
	fill(&s.Bed, DefaultBed)
	fill(&s.Lantern, DefaultLantern)
	fill(&s.Chest, DefaultChest)
	fill(&s.Wardrobe, DefaultWardrobe)
	fill(&s.Ladder, DefaultLadder)
	return Palette{s: s}
}

func (p Palette) Name() string       { return p.s.Name }
func (p Palette) Foundation() string { return p.s.Foundation }
func (p Palette) Wall() string       { return p.s.Wall }
func (p Palette) WallAccent() string { return p.s.WallAccent }
func (p Palette) Floor() string      { return p.s.Floor }
func (p Palette) Ceiling() string    { return p.s.Ceiling }
func (p Palette) Roof() string       { return p.s.Roof }
func (p Palette) RoofTrim() string   { return p.s.RoofTrim }
func (p Palette) Table() string      { return p.s.Table }
func (p Palette) Chair() string      { return p.s.Chair }
func (p Palette) Bed() string        { return p.s.Bed }
func (p Palette) Lantern() string    { return p.s.Lantern }
func (p Palette) Chest() string      { return p.s.Chest }
func (p Palette) Wardrobe() string   { return p.s.Wardrobe }
func (p Palette) Ladder() string     { return p.s.Ladder }

// Spec returns a copy of the fully resolved construction input.
func (p Palette) Spec() Spec { return p.s }
