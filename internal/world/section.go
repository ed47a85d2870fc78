package world

import (
	"crypto/sha256"
	"encoding/binary"
)

const SectionSize = 16

type ChunkKey struct {
	CX int
	CY int
	CZ int
}

// Section is one 16³ cube of palette ids. Id 0 is always air.
type Section struct {
	Key    ChunkKey
	Blocks []uint16 // len = 16*16*16, index x + z*16 + y*256

	nonAir int
	dirty  bool
	hash   [32]byte
}

func newSection(k ChunkKey) *Section {
	return &Section{Key: k, Blocks: make([]uint16, SectionSize*SectionSize*SectionSize)}
}

func (s *Section) index(x, y, z int) int {
	return x + z*SectionSize + y*SectionSize*SectionSize
}

func (s *Section) Get(x, y, z int) uint16 {
	return s.Blocks[s.index(x, y, z)]
}

// Set stores b and reports whether the cell changed.
func (s *Section) Set(x, y, z int, b uint16) bool {
	i := s.index(x, y, z)
	old := s.Blocks[i]
	if old == b {
		return false
	}
	switch {
	case old == 0:
		s.nonAir++
	case b == 0:
		s.nonAir--
	}
	s.Blocks[i] = b
	s.dirty = true
	return true
}

func (s *Section) NonAir() int { return s.nonAir }

func (s *Section) Digest() [32]byte {
	if s.dirty || s.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range s.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(s.hash[:], h.Sum(nil))
		s.dirty = false
	}
	return s.hash
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func keyOf(x, y, z int) ChunkKey {
	return ChunkKey{CX: floorDiv(x, SectionSize), CY: floorDiv(y, SectionSize), CZ: floorDiv(z, SectionSize)}
}
