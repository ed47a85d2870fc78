package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"structurebuilder.ai/internal/builder"
	"structurebuilder.ai/internal/material"
	"structurebuilder.ai/internal/persistence/indexdb"
	"structurebuilder.ai/internal/protocol"
	"structurebuilder.ai/internal/world"
)

type Builder interface {
	Build(ctx context.Context, req builder.BuildRequest) (protocol.BuildRecord, error)
	FlatWorld(ctx context.Context, args map[string]any, actor string) (protocol.BuildRecord, error)
	Preview(req builder.BuildRequest, withPlacements bool) (builder.Preview, error)
	Structures() []string
	Materials() []material.Palette
}

// History answers recent_builds. Optional.
type History interface {
	RecentBuilds(ctx context.Context, q indexdb.BuildQuery) ([]protocol.BuildRecord, error)
}

type Config struct {
	Builder Builder
	History History

	HMACSecret      string
	AllowLegacyHMAC bool
	// LoopbackOnly rejects non-loopback clients when no HMAC secret is set.
	LoopbackOnly bool

	MaxBodyBytes    int64
	ReplayWindow    time.Duration
	ReplayCacheSize int

	Logger *log.Logger
}

type Server struct {
	builder     Builder
	history     History
	hmacSecret  []byte
	allowLegacy bool
	loopback    bool
	maxBody     int64
	replay      *replayGuard
	log         *log.Logger
	now         func() time.Time

	tools  []toolDef
	byName map[string]int

	mu    sync.Mutex
	calls map[string]uint64
	fails map[string]uint64
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Builder == nil {
		return nil, fmt.Errorf("nil builder")
	}
	names := make([]string, 0, len(cfg.Builder.Materials()))
	for _, p := range cfg.Builder.Materials() {
		names = append(names, p.Name())
	}
	tools, err := buildTools(cfg.Builder.Structures(), names)
	if err != nil {
		return nil, err
	}
	s := &Server{
		builder:     cfg.Builder,
		history:     cfg.History,
		allowLegacy: cfg.AllowLegacyHMAC,
		loopback:    cfg.LoopbackOnly,
		maxBody:     cfg.MaxBodyBytes,
		log:         cfg.Logger,
		now:         time.Now,
		tools:       tools,
		byName:      map[string]int{},
		calls:       map[string]uint64{},
		fails:       map[string]uint64{},
	}
	if s.maxBody <= 0 {
		s.maxBody = 1 << 20
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	for i, t := range tools {
		s.byName[t.Name] = i
	}
	if strings.TrimSpace(cfg.HMACSecret) != "" {
		s.hmacSecret = []byte(cfg.HMACSecret)
		s.replay = newReplayGuard(cfg.ReplayWindow, cfg.ReplayCacheSize)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/mcp", s.handleMCP)
	return gzhttp.GzipHandler(mux)
}

func (s *Server) handleMCP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if len(s.hmacSecret) == 0 && s.loopback {
		if err := requireLoopback(r); err != nil {
			http.Error(rw, err.Error(), http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		_, _ = rw.Write([]byte("bad body"))
		return
	}
	_ = r.Body.Close()
	if int64(len(body)) > s.maxBody {
		rw.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = rw.Write([]byte("body too large"))
		return
	}

	actor := strings.TrimSpace(r.Header.Get(headerAgentID))
	if len(s.hmacSecret) > 0 {
		vr := verifyHMAC(r, body, s.hmacSecret, s.now(), s.allowLegacy)
		if vr.HTTPStatus != 0 {
			rw.WriteHeader(vr.HTTPStatus)
			_, _ = rw.Write([]byte(vr.Message))
			return
		}
		if !s.replay.allow(vr.Actor, vr.Signature, s.now()) {
			rw.WriteHeader(http.StatusUnauthorized)
			_, _ = rw.Write([]byte("replayed request"))
			return
		}
		actor = vr.Actor
	}

	rw.Header().Set("content-type", "application/json")
	req, err := parseRPCRequest(body)
	if err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(rw).Encode(rpcErr(nil, rpcCodeParse, "bad jsonrpc request", err.Error()))
		return
	}

	resp := s.dispatch(r.Context(), actor, req)
	_ = json.NewEncoder(rw).Encode(resp)
}

func (s *Server) dispatch(ctx context.Context, actor string, req rpcRequest) rpcResponse {
	switch req.Method {
	case "initialize":
		return rpcOK(req.ID, map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "structurebuilder",
				"version": protocol.Version,
			},
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
		})

	case "list_tools", "tools/list":
		return rpcOK(req.ID, map[string]any{"tools": s.tools})

	case "call_tool", "tools/call":
		var p struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if len(req.Params) == 0 {
			return rpcErr(req.ID, rpcCodeInvalidParams, "missing params", nil)
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return rpcErr(req.ID, rpcCodeInvalidParams, "bad params", err.Error())
		}
		if p.Name == "" {
			return rpcErr(req.ID, rpcCodeInvalidParams, "missing tool name", nil)
		}
		i, ok := s.byName[p.Name]
		if !ok {
			return rpcErr(req.ID, rpcCodeMethodNotFound, "tool not found", map[string]any{"name": p.Name})
		}
		tool := s.tools[i]
		args, err := tool.decodeArgs(p.Arguments)
		if err != nil {
			s.count(p.Name, true)
			return rpcErr(req.ID, rpcCodeInvalidParams, "invalid arguments: "+err.Error(),
				errorData{Code: protocol.ErrInvalidParameter, Tool: p.Name})
		}
		out, err := s.callTool(ctx, actor, p.Name, args)
		s.count(p.Name, err != nil)
		if err != nil {
			code := errorCode(err)
			s.log.Printf("tool=%s actor=%s code=%s err=%v", p.Name, actor, code, err)
			return rpcErr(req.ID, rpcCodeToolFailed, p.Name+" failed: "+err.Error(), errorData{Code: code, Tool: p.Name})
		}
		return rpcOK(req.ID, out)

	default:
		return rpcErr(req.ID, rpcCodeMethodNotFound, "method not found", nil)
	}
}

func (s *Server) callTool(ctx context.Context, actor string, name string, args map[string]any) (any, error) {
	switch name {
	case toolBuildStructure:
		req := buildRequest(args, actor)
		rec, err := s.builder.Build(ctx, req)
		if err != nil {
			return nil, err
		}
		return buildResult{BuildDocument: rec.Result, BuildID: rec.ID, Material: rec.Material}, nil

	case toolCreateFlatWorld:
		rec, err := s.builder.FlatWorld(ctx, args, actor)
		if err != nil {
			return nil, err
		}
		return buildResult{BuildDocument: rec.Result, BuildID: rec.ID, Material: rec.Material}, nil

	case toolPreviewStructure:
		withPlacements := flagArg(args, "placements")
		delete(args, "placements")
		return s.builder.Preview(buildRequest(args, actor), withPlacements)

	case toolListMaterials:
		pals := s.builder.Materials()
		out := make([]material.Spec, 0, len(pals))
		for _, p := range pals {
			out = append(out, p.Spec())
		}
		return map[string]any{"materials": out}, nil

	case toolListStructures:
		return map[string]any{"structures": s.builder.Structures()}, nil

	case toolRecentBuilds:
		if s.history == nil {
			return nil, errHistoryDisabled
		}
		q := indexdb.BuildQuery{}
		if v, ok := args["limit"].(json.Number); ok {
			n, _ := v.Int64()
			q.Limit = int(n)
		}
		q.StructureType, _ = args["type"].(string)
		q.Actor, _ = args["actor"].(string)
		recs, err := s.history.RecentBuilds(ctx, q)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []protocol.BuildRecord{}
		}
		return map[string]any{"builds": recs}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// buildResult is the build document plus the host's bookkeeping fields.
type buildResult struct {
	protocol.BuildDocument
	BuildID  string `json:"buildId"`
	Material string `json:"material"`
}

var errHistoryDisabled = &codedError{code: protocol.ErrBadRequest, msg: "build history is disabled"}

type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

// buildRequest splits type and material out of the flat argument object; the
// rest is handed to the generator as-is.
func buildRequest(args map[string]any, actor string) builder.BuildRequest {
	req := builder.BuildRequest{Actor: actor, Args: map[string]any{}}
	for k, v := range args {
		switch k {
		case "type":
			req.Type, _ = v.(string)
		case "material":
			req.Material, _ = v.(string)
		default:
			req.Args[k] = v
		}
	}
	return req
}

func flagArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

func errorCode(err error) string {
	var c protocol.Coded
	switch {
	case errors.As(err, &c):
		return c.Code()
	case errors.Is(err, world.ErrStopped):
		return protocol.ErrWorldStopped
	case errors.Is(err, context.DeadlineExceeded):
		return protocol.ErrWorldBusy
	default:
		return protocol.ErrInternal
	}
}

func (s *Server) count(tool string, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[tool]++
	if failed {
		s.fails[tool]++
	}
}

type ToolStats struct {
	Tool  string `json:"tool"`
	Calls uint64 `json:"calls"`
	Fails uint64 `json:"fails"`
}

type Stats struct {
	Tools          []ToolStats `json:"tools"`
	ReplayEntries  int         `json:"replay_entries"`
	ReplayRejected uint64      `json:"replay_rejected"`
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	out := Stats{Tools: make([]ToolStats, 0, len(s.calls))}
	for tool, n := range s.calls {
		out.Tools = append(out.Tools, ToolStats{Tool: tool, Calls: n, Fails: s.fails[tool]})
	}
	s.mu.Unlock()
	sort.Slice(out.Tools, func(i, j int) bool { return out.Tools[i].Tool < out.Tools[j].Tool })
	if s.replay != nil {
		out.ReplayEntries, out.ReplayRejected = s.replay.stats()
	}
	return out
}
