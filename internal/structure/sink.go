package structure

// BlockSink receives placement commands in emission order. Count reports how
// many commands the sink has accepted in total.
type BlockSink interface {
	Place(x, y, z int, block string)
	Count() int
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type Placement struct {
	Pos   Coord  `json:"pos"`
	Block string `json:"block"`
}

// RecordingSink keeps every command in memory. It backs previews and tests.
type RecordingSink struct {
	placements []Placement
}

func NewRecordingSink() *RecordingSink { return &RecordingSink{} }

func (s *RecordingSink) Place(x, y, z int, block string) {
	s.placements = append(s.placements, Placement{Pos: Coord{X: x, Y: y, Z: z}, Block: block})
}

func (s *RecordingSink) Count() int { return len(s.placements) }

// Placements returns the recorded commands in emission order. The slice is
// shared with the sink and must not be modified.
func (s *RecordingSink) Placements() []Placement { return s.placements }

// BlockAt returns the last block written at a coordinate.
func (s *RecordingSink) BlockAt(x, y, z int) (string, bool) {
	c := Coord{X: x, Y: y, Z: z}
	for i := len(s.placements) - 1; i >= 0; i-- {
		if s.placements[i].Pos == c {
			return s.placements[i].Block, true
		}
	}
	return "", false
}

// HasBlockAt reports whether block was written at the coordinate at any point.
func (s *RecordingSink) HasBlockAt(x, y, z int, block string) bool {
	c := Coord{X: x, Y: y, Z: z}
	for _, p := range s.placements {
		if p.Pos == c && p.Block == block {
			return true
		}
	}
	return false
}

func (s *RecordingSink) HasAnyBlockAt(x, y, z int) bool {
	c := Coord{X: x, Y: y, Z: z}
	for _, p := range s.placements {
		if p.Pos == c {
			return true
		}
	}
	return false
}

func (s *RecordingSink) HasType(block string) bool {
	return s.CountType(block) > 0
}

func (s *RecordingSink) CountType(block string) int {
	n := 0
	for _, p := range s.placements {
		if p.Block == block {
			n++
		}
	}
	return n
}

// Types returns the number of commands per block id.
func (s *RecordingSink) Types() map[string]int {
	out := map[string]int{}
	for _, p := range s.placements {
		out[p.Block]++
	}
	return out
}

// CountingSink forwards to another sink and counts only what passed through
// it, so one generation can be measured against a shared destination. With a
// nil next it only counts.
type CountingSink struct {
	next  BlockSink
	n     int
	limit int
}

// blockLimitReached unwinds a generator once a CountingSink passes its limit.
type blockLimitReached struct{}

func NewCountingSink(next BlockSink) *CountingSink { return &CountingSink{next: next} }

func (s *CountingSink) Place(x, y, z int, block string) {
	if s.limit > 0 && s.n >= s.limit {
		s.n++
		panic(blockLimitReached{})
	}
	if s.next != nil {
		s.next.Place(x, y, z, block)
	}
	s.n++
}

func (s *CountingSink) Count() int { return s.n }
