package mcp

import (
	"sync"
	"time"
)

// replayGuard remembers recently accepted (actor, signature) pairs so a
// captured request cannot be replayed inside the signature window.
type replayGuard struct {
	mu        sync.Mutex
	seen      map[string]int64
	ttl       time.Duration
	maxSize   int
	lastPrune int64
	rejected  uint64
}

func newReplayGuard(ttl time.Duration, maxSize int) *replayGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 65536
	}
	return &replayGuard{
		seen:    map[string]int64{},
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func (g *replayGuard) allow(actor string, signature string, now time.Time) bool {
	if g == nil || signature == "" {
		return true
	}
	key := actor + "|" + signature
	nowMS := now.UnixMilli()
	expiresAt := nowMS + g.ttl.Milliseconds()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.shouldPruneLocked(nowMS) {
		g.pruneLocked(nowMS)
	}
	if exp, ok := g.seen[key]; ok && exp > nowMS {
		g.rejected++
		return false
	}
	g.seen[key] = expiresAt
	if len(g.seen) > g.maxSize {
		g.seen = map[string]int64{key: expiresAt}
		g.lastPrune = nowMS
	}
	return true
}

func (g *replayGuard) shouldPruneLocked(nowMS int64) bool {
	if len(g.seen) == 0 {
		return false
	}
	if len(g.seen) > g.maxSize/16 {
		return true
	}
	return nowMS-g.lastPrune > g.ttl.Milliseconds()/2
}

func (g *replayGuard) pruneLocked(nowMS int64) {
	for k, exp := range g.seen {
		if exp <= nowMS {
			delete(g.seen, k)
		}
	}
	g.lastPrune = nowMS
}

func (g *replayGuard) stats() (size int, rejected uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen), g.rejected
}
