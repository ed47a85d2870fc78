package observer

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"structurebuilder.ai/internal/protocol"
)

// Hub fans build records out to connected observers. It implements the
// builder's recorder interface and never blocks the caller: an observer whose
// buffer is full is disconnected.
type Hub struct {
	log     *log.Logger
	bufSize int

	mu       sync.Mutex
	sessions map[string]*session

	published atomic.Uint64
	dropped   atomic.Uint64
}

type session struct {
	id    string
	out   chan []byte
	types map[string]bool // empty means every type
	gone  chan struct{}
	once  sync.Once
}

func (s *session) kick() { s.once.Do(func() { close(s.gone) }) }

func (s *session) wants(structureType string) bool {
	return len(s.types) == 0 || s.types[structureType]
}

func NewHub(bufSize int, logger *log.Logger) *Hub {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Hub{
		log:      logger,
		bufSize:  bufSize,
		sessions: map[string]*session{},
	}
}

func (h *Hub) join(id string, types []string) *session {
	s := &session{
		id:   id,
		out:  make(chan []byte, h.bufSize),
		gone: make(chan struct{}),
	}
	s.types = typeSet(types)
	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	return s
}

func (h *Hub) leave(id string) {
	h.mu.Lock()
	s := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if s != nil {
		s.kick()
	}
}

func (h *Hub) resubscribe(id string, types []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s := h.sessions[id]; s != nil {
		s.types = typeSet(types)
	}
}

func typeSet(types []string) map[string]bool {
	if len(types) == 0 {
		return nil
	}
	m := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			m[t] = true
		}
	}
	return m
}

func (h *Hub) RecordBuild(rec protocol.BuildRecord) {
	b, err := json.Marshal(protocol.BuildEventMsg{
		Type:            protocol.TypeBuild,
		ProtocolVersion: protocol.Version,
		Build:           rec,
	})
	if err != nil {
		return
	}
	h.published.Add(1)

	var slow []*session
	h.mu.Lock()
	for _, s := range h.sessions {
		if !s.wants(rec.Result.StructureType) {
			continue
		}
		select {
		case s.out <- b:
		default:
			slow = append(slow, s)
			delete(h.sessions, s.id)
		}
	}
	h.mu.Unlock()

	for _, s := range slow {
		h.dropped.Add(1)
		s.kick()
		if h.log != nil {
			h.log.Printf("[observer] drop slow session=%s", s.id)
		}
	}
}

type Stats struct {
	Sessions  int    `json:"sessions"`
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	n := len(h.sessions)
	h.mu.Unlock()
	return Stats{Sessions: n, Published: h.published.Load(), Dropped: h.dropped.Load()}
}
