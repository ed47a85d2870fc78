package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Blocks is a compact form of a block id sequence: a palette of distinct ids
// in first-seen order plus base64(varint pairs) of (palette index, run length).
type Blocks struct {
	Palette []string `json:"palette"`
	RLE     string   `json:"rle"`
	Len     int      `json:"len"`
}

// Interner assigns dense uint16 ids to block names in first-seen order.
type Interner struct {
	names []string
	ids   map[string]uint16
}

func NewInterner(seed ...string) *Interner {
	in := &Interner{ids: map[string]uint16{}}
	for _, s := range seed {
		in.ID(s)
	}
	return in
}

// ID returns the id for name, assigning the next one on first use. It panics
// once more than 65536 distinct names have been seen.
func (in *Interner) ID(name string) uint16 {
	if id, ok := in.ids[name]; ok {
		return id
	}
	if len(in.names) > 0xFFFF {
		panic("encoding: interner palette overflow")
	}
	id := uint16(len(in.names))
	in.names = append(in.names, name)
	in.ids[name] = id
	return id
}

func (in *Interner) Lookup(name string) (uint16, bool) {
	id, ok := in.ids[name]
	return id, ok
}

func (in *Interner) Name(id uint16) string {
	if int(id) >= len(in.names) {
		return ""
	}
	return in.names[id]
}

func (in *Interner) Names() []string { return append([]string(nil), in.names...) }

func (in *Interner) Len() int { return len(in.names) }

// EncodeBlocks interns names and run-length encodes the resulting ids.
func EncodeBlocks(names []string) Blocks {
	in := NewInterner()
	ids := make([]uint16, len(names))
	for i, n := range names {
		ids[i] = in.ID(n)
	}
	return Blocks{Palette: in.Names(), RLE: EncodeRLE(ids), Len: len(ids)}
}

// DecodeBlocks expands b back into the original name sequence.
func DecodeBlocks(b Blocks) ([]string, error) {
	ids, err := DecodeRLE(b.RLE)
	if err != nil {
		return nil, err
	}
	if b.Len != 0 && len(ids) != b.Len {
		return nil, fmt.Errorf("length mismatch: got %d want %d", len(ids), b.Len)
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		if int(id) >= len(b.Palette) {
			return nil, fmt.Errorf("palette index %d out of range at %d", id, i)
		}
		out[i] = b.Palette[id]
	}
	return out, nil
}

// EncodeRLE encodes ids into base64(varint pairs) of (id, run length).
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	put := func(v uint64) {
		n := binary.PutUvarint(tmp[:], v)
		buf.Write(tmp[:n])
	}
	for i := 0; i < len(ids); {
		j := i + 1
		for j < len(ids) && ids[j] == ids[i] {
			j++
		}
		put(uint64(ids[i]))
		put(uint64(j - i))
		i = j
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeRLE(b64 string) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	next := func(i int) (uint64, int, error) {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return 0, 0, fmt.Errorf("bad varint at %d", i)
		}
		return v, i + n, nil
	}
	for i := 0; i < len(raw); {
		id, j, err := next(i)
		if err != nil {
			return nil, err
		}
		run, k, err := next(j)
		if err != nil {
			return nil, err
		}
		if id > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", id)
		}
		if run == 0 || run > 1<<24 {
			return nil, fmt.Errorf("bad run length %d at %d", run, j)
		}
		for r := uint64(0); r < run; r++ {
			out = append(out, uint16(id))
		}
		i = k
	}
	return out, nil
}
