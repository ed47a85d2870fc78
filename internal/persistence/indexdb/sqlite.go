package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"structurebuilder.ai/internal/protocol"
)

const schemaVersion = "1"

// SQLiteIndex is a queryable secondary index over accepted builds. Writes are
// queued and committed in batches by a single goroutine; the JSONL build log
// stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropBuildTotal atomic.Uint64
	writeFailTotal atomic.Uint64
	indexedTotal   atomic.Uint64
}

type req struct {
	build protocol.BuildRecord
}

type Stats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropBuildTotal uint64 `json:"drop_build_total"`
	WriteFailTotal uint64 `json:"write_fail_total"`
	IndexedTotal   uint64 `json:"indexed_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			actor TEXT NOT NULL,
			material TEXT NOT NULL,
			structure_type TEXT NOT NULL,
			blocks_placed INTEGER NOT NULL,
			build_time_ms INTEGER NOT NULL,
			min_x INTEGER NOT NULL,
			min_y INTEGER NOT NULL,
			min_z INTEGER NOT NULL,
			max_x INTEGER NOT NULL,
			max_y INTEGER NOT NULL,
			max_z INTEGER NOT NULL,
			args_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_recorded_at ON builds(recorded_at);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_type ON builds(structure_type, recorded_at);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_pos ON builds(min_x, min_z, max_x, max_z);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version',?)`, schemaVersion)
	return err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) RecordBuild(rec protocol.BuildRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{build: rec}:
	default:
		// Drop if the indexer falls behind.
		s.dropBuildTotal.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropBuildTotal: s.dropBuildTotal.Load(),
		WriteFailTotal: s.writeFailTotal.Load(),
		IndexedTotal:   s.indexedTotal.Load(),
	}
}

// BuildQuery filters RecentBuilds. Zero values match everything.
type BuildQuery struct {
	StructureType string
	Actor         string
	Limit         int
}

// RecentBuilds returns committed builds, newest first. Rows still waiting in
// the write queue are not visible.
func (s *SQLiteIndex) RecentBuilds(ctx context.Context, q BuildQuery) ([]protocol.BuildRecord, error) {
	if q.Limit <= 0 || q.Limit > 1000 {
		q.Limit = 50
	}
	query := `SELECT id,recorded_at,actor,material,structure_type,blocks_placed,build_time_ms,
		min_x,min_y,min_z,max_x,max_y,max_z,args_json FROM builds WHERE 1=1`
	var args []any
	if q.StructureType != "" {
		query += ` AND structure_type=?`
		args = append(args, q.StructureType)
	}
	if q.Actor != "" {
		query += ` AND actor=?`
		args = append(args, q.Actor)
	}
	query += ` ORDER BY recorded_at DESC, id DESC LIMIT ?`
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.BuildRecord
	for rows.Next() {
		var (
			rec      protocol.BuildRecord
			bb       protocol.BoundingBox
			argsJSON string
		)
		if err := rows.Scan(
			&rec.ID, &rec.RecordedAt, &rec.Actor, &rec.Material,
			&rec.Result.StructureType, &rec.Result.BlocksPlaced, &rec.Result.BuildTimeMs,
			&bb.MinX, &bb.MinY, &bb.MinZ, &bb.MaxX, &bb.MaxY, &bb.MaxZ,
			&argsJSON,
		); err != nil {
			return nil, err
		}
		rec.Result.Status = protocol.StatusSuccess
		rec.Result.BoundingBox = bb
		if argsJSON != "" && argsJSON != "null" {
			if err := json.Unmarshal([]byte(argsJSON), &rec.Args); err != nil {
				return nil, fmt.Errorf("build %s: args: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertBuild, _ := s.db.Prepare(`INSERT OR REPLACE INTO builds(id,recorded_at,actor,material,structure_type,blocks_placed,build_time_ms,min_x,min_y,min_z,max_x,max_y,max_z,args_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertBuild != nil {
			_ = insertBuild.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		pending       uint64
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = 250 * time.Millisecond
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.writeFailTotal.Add(pending)
		} else {
			s.indexedTotal.Add(pending)
		}
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		s.writeFailTotal.Add(pending)
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}

	// Queue may stay idle after a write; the ticker makes sure it lands.
	ticker := time.NewTicker(commitMaxWait)
	defer ticker.Stop()

	for {
		select {
		case r, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			begin()
			if tx == nil || insertBuild == nil {
				s.writeFailTotal.Add(1)
				continue
			}
			b := r.build
			bb := b.Result.BoundingBox
			argsJSON, err := json.Marshal(b.Args)
			if err != nil {
				argsJSON = []byte("null")
			}
			if _, err := tx.Stmt(insertBuild).Exec(
				b.ID,
				b.RecordedAt,
				b.Actor,
				b.Material,
				b.Result.StructureType,
				b.Result.BlocksPlaced,
				b.Result.BuildTimeMs,
				bb.MinX, bb.MinY, bb.MinZ,
				bb.MaxX, bb.MaxY, bb.MaxZ,
				string(argsJSON),
			); err != nil {
				s.writeFailTotal.Add(1)
				rollback()
				continue
			}
			opCount++
			pending++
			if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
				commit()
			}
		case <-ticker.C:
			commit()
		}
	}
}
