package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"structurebuilder.ai/internal/config"
	"structurebuilder.ai/internal/mcp"
	"structurebuilder.ai/internal/persistence/indexdb"
	"structurebuilder.ai/internal/protocol"
)

// runtimeIndex is the optional read-model of accepted builds.
type runtimeIndex interface {
	RecordBuild(rec protocol.BuildRecord)
	Close() error
}

// openRuntimeIndex picks the backend from SB_INDEX_BACKEND (sqlite, ingest,
// none). Only the sqlite backend can answer history queries.
func openRuntimeIndex(cfg config.Config, logger *log.Logger) (runtimeIndex, mcp.History, error) {
	if cfg.Storage.DisableDB {
		return nil, nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("SB_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
		if cfg.Storage.IngestURL != "" {
			backend = "ingest"
		}
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil, nil
	case "sqlite":
		dbPath := filepath.Join(cfg.Storage.DataDir, "index", "builds.sqlite")
		idx, err := indexdb.OpenSQLite(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return idx, idx, nil
	case "ingest":
		endpoint := cfg.Storage.IngestURL
		if v := strings.TrimSpace(os.Getenv("SB_INDEX_INGEST_URL")); v != "" {
			endpoint = v
		}
		token := cfg.Storage.IngestToken
		if v := strings.TrimSpace(os.Getenv("SB_INDEX_INGEST_TOKEN")); v != "" {
			token = v
		}
		if endpoint == "" {
			return nil, nil, fmt.Errorf("SB_INDEX_BACKEND=ingest but no ingest url is configured")
		}
		idx, err := indexdb.OpenIngest(indexdb.IngestConfig{
			Endpoint:      endpoint,
			Token:         token,
			WorldID:       cfg.World.ID,
			BatchSize:     envInt("SB_INDEX_INGEST_BATCH_SIZE", 128),
			FlushInterval: time.Duration(envInt("SB_INDEX_INGEST_FLUSH_MS", 500)) * time.Millisecond,
			Logger:        logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return idx, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SB_INDEX_BACKEND: %s", backend)
	}
}
