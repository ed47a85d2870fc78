package world

// Txn is the write handle passed to Exec callbacks. It satisfies
// structure.BlockSink.
type Txn struct {
	w        *World
	n        int
	rejected int
}

// Place writes block at (x, y, z). Commands outside the world bounds are
// accepted and counted but leave the world unchanged.
func (t *Txn) Place(x, y, z int, block string) {
	t.n++
	if !t.w.inBounds(x, y, z) {
		t.rejected++
		return
	}
	t.w.set(x, y, z, t.w.blocks.ID(block))
}

// Count is the number of commands accepted by this transaction.
func (t *Txn) Count() int { return t.n }

// Rejected is how many accepted commands fell outside the world bounds.
func (t *Txn) Rejected() int { return t.rejected }

func (t *Txn) BlockAt(x, y, z int) string {
	return t.w.blocks.Name(t.w.get(x, y, z))
}

func (t *Txn) WorldID() string { return t.w.cfg.ID }
