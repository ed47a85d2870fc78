package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"structurebuilder.ai/internal/mcp"
	"structurebuilder.ai/internal/persistence/indexdb"
	persistlog "structurebuilder.ai/internal/persistence/log"
	"structurebuilder.ai/internal/transport/observer"
	"structurebuilder.ai/internal/world"
)

// metricsSources is everything /metrics reports on. Nil members are skipped.
type metricsSources struct {
	World    *world.World
	Index    runtimeIndex
	BuildLog *persistlog.BuildLogger
	Hub      *observer.Hub
	MCP      *mcp.Server
	Mirror   *r2MirrorRuntime
}

func metricsHandler(src metricsSources) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		writeMetrics(ctx, rw, src)
	}
}

func writeMetrics(ctx context.Context, w io.Writer, src metricsSources) {
	if src.World != nil {
		st, err := src.World.Stats(ctx)
		id := src.World.ID()
		if err == nil {
			fmt.Fprintf(w, "# HELP structurebuilder_world_sections Non-empty 16^3 sections.\n")
			fmt.Fprintf(w, "# TYPE structurebuilder_world_sections gauge\n")
			fmt.Fprintf(w, "structurebuilder_world_sections{world=%q} %d\n", id, st.Sections)

			fmt.Fprintf(w, "# HELP structurebuilder_world_blocks Non-air blocks stored.\n")
			fmt.Fprintf(w, "# TYPE structurebuilder_world_blocks gauge\n")
			fmt.Fprintf(w, "structurebuilder_world_blocks{world=%q} %d\n", id, st.NonAir)

			fmt.Fprintf(w, "# HELP structurebuilder_world_palette Distinct block names interned.\n")
			fmt.Fprintf(w, "# TYPE structurebuilder_world_palette gauge\n")
			fmt.Fprintf(w, "structurebuilder_world_palette{world=%q} %d\n", id, st.Palette)
		}

		fmt.Fprintf(w, "# HELP structurebuilder_world_writes_total Block writes applied.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_world_writes_total counter\n")
		fmt.Fprintf(w, "structurebuilder_world_writes_total{world=%q} %d\n", id, st.Writes)

		fmt.Fprintf(w, "# HELP structurebuilder_world_rejected_total Block writes outside world bounds.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_world_rejected_total counter\n")
		fmt.Fprintf(w, "structurebuilder_world_rejected_total{world=%q} %d\n", id, st.Rejected)

		fmt.Fprintf(w, "# HELP structurebuilder_world_txns_total Transactions executed.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_world_txns_total counter\n")
		fmt.Fprintf(w, "structurebuilder_world_txns_total{world=%q} %d\n", id, st.Txns)

		fmt.Fprintf(w, "# HELP structurebuilder_world_queue_depth Pending transactions.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_world_queue_depth gauge\n")
		fmt.Fprintf(w, "structurebuilder_world_queue_depth{world=%q} %d\n", id, st.QueueLen)
	}

	if src.BuildLog != nil {
		fmt.Fprintf(w, "# HELP structurebuilder_buildlog_write_fail_total Build log writes that failed.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_buildlog_write_fail_total counter\n")
		fmt.Fprintf(w, "structurebuilder_buildlog_write_fail_total %d\n", src.BuildLog.FailedTotal())
	}

	switch idx := src.Index.(type) {
	case *indexdb.SQLiteIndex:
		s := idx.Stats()
		fmt.Fprintf(w, "# HELP structurebuilder_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_queue_depth gauge\n")
		fmt.Fprintf(w, "structurebuilder_index_queue_depth{backend=%q} %d\n", "sqlite", s.QueueDepth)

		fmt.Fprintf(w, "# HELP structurebuilder_index_dropped_total Build rows dropped on a full queue.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_dropped_total counter\n")
		fmt.Fprintf(w, "structurebuilder_index_dropped_total{backend=%q} %d\n", "sqlite", s.DropBuildTotal)

		fmt.Fprintf(w, "# HELP structurebuilder_index_write_fail_total Failed index commits.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_write_fail_total counter\n")
		fmt.Fprintf(w, "structurebuilder_index_write_fail_total{backend=%q} %d\n", "sqlite", s.WriteFailTotal)

		fmt.Fprintf(w, "# HELP structurebuilder_index_written_total Build rows committed.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_written_total counter\n")
		fmt.Fprintf(w, "structurebuilder_index_written_total{backend=%q} %d\n", "sqlite", s.IndexedTotal)
	case *indexdb.IngestIndex:
		s := idx.Stats()
		fmt.Fprintf(w, "# HELP structurebuilder_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_queue_depth gauge\n")
		fmt.Fprintf(w, "structurebuilder_index_queue_depth{backend=%q} %d\n", "ingest", s.QueueDepth)

		fmt.Fprintf(w, "# HELP structurebuilder_index_dropped_total Build rows dropped on a full queue.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_dropped_total counter\n")
		fmt.Fprintf(w, "structurebuilder_index_dropped_total{backend=%q} %d\n", "ingest", s.QueueDroppedTotal)

		fmt.Fprintf(w, "# HELP structurebuilder_index_write_fail_total Failed ingest flushes.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_write_fail_total counter\n")
		fmt.Fprintf(w, "structurebuilder_index_write_fail_total{backend=%q} %d\n", "ingest", s.FlushFailTotal)

		fmt.Fprintf(w, "# HELP structurebuilder_index_written_total Build rows delivered.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_index_written_total counter\n")
		fmt.Fprintf(w, "structurebuilder_index_written_total{backend=%q} %d\n", "ingest", s.SentTotal)
	}

	if src.Hub != nil {
		s := src.Hub.Stats()
		fmt.Fprintf(w, "# HELP structurebuilder_observer_sessions Connected observer sessions.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_observer_sessions gauge\n")
		fmt.Fprintf(w, "structurebuilder_observer_sessions %d\n", s.Sessions)

		fmt.Fprintf(w, "# HELP structurebuilder_observer_published_total Build events delivered to sessions.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_observer_published_total counter\n")
		fmt.Fprintf(w, "structurebuilder_observer_published_total %d\n", s.Published)

		fmt.Fprintf(w, "# HELP structurebuilder_observer_dropped_total Sessions dropped for falling behind.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_observer_dropped_total counter\n")
		fmt.Fprintf(w, "structurebuilder_observer_dropped_total %d\n", s.Dropped)
	}

	if src.MCP != nil {
		s := src.MCP.Stats()
		fmt.Fprintf(w, "# HELP structurebuilder_mcp_tool_calls_total Tool calls by tool.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_mcp_tool_calls_total counter\n")
		for _, t := range s.Tools {
			fmt.Fprintf(w, "structurebuilder_mcp_tool_calls_total{tool=%q} %d\n", t.Tool, t.Calls)
		}
		fmt.Fprintf(w, "# HELP structurebuilder_mcp_tool_failures_total Failed tool calls by tool.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_mcp_tool_failures_total counter\n")
		for _, t := range s.Tools {
			fmt.Fprintf(w, "structurebuilder_mcp_tool_failures_total{tool=%q} %d\n", t.Tool, t.Fails)
		}
		fmt.Fprintf(w, "# HELP structurebuilder_mcp_replay_rejected_total Signed requests rejected as replays.\n")
		fmt.Fprintf(w, "# TYPE structurebuilder_mcp_replay_rejected_total counter\n")
		fmt.Fprintf(w, "structurebuilder_mcp_replay_rejected_total %d\n", s.ReplayRejected)
	}

	writeR2MirrorMetrics(w, src.Mirror)
}

func writeR2MirrorMetrics(w io.Writer, mirror *r2MirrorRuntime) {
	s, ok := mirror.Stats()
	if !ok {
		return
	}
	fmt.Fprintf(w, "# HELP structurebuilder_r2_mirror_queue_depth Current R2 mirror queue depth.\n")
	fmt.Fprintf(w, "# TYPE structurebuilder_r2_mirror_queue_depth gauge\n")
	fmt.Fprintf(w, "structurebuilder_r2_mirror_queue_depth %d\n", s.QueueDepth)

	fmt.Fprintf(w, "# HELP structurebuilder_r2_mirror_dropped_total Files dropped because the queue stayed saturated.\n")
	fmt.Fprintf(w, "# TYPE structurebuilder_r2_mirror_dropped_total counter\n")
	fmt.Fprintf(w, "structurebuilder_r2_mirror_dropped_total %d\n", s.DroppedTotal)

	fmt.Fprintf(w, "# HELP structurebuilder_r2_mirror_upload_success_total Successful mirror uploads.\n")
	fmt.Fprintf(w, "# TYPE structurebuilder_r2_mirror_upload_success_total counter\n")
	fmt.Fprintf(w, "structurebuilder_r2_mirror_upload_success_total %d\n", s.UploadSuccessTotal)

	fmt.Fprintf(w, "# HELP structurebuilder_r2_mirror_upload_fail_total Failed mirror uploads after retry.\n")
	fmt.Fprintf(w, "# TYPE structurebuilder_r2_mirror_upload_fail_total counter\n")
	fmt.Fprintf(w, "structurebuilder_r2_mirror_upload_fail_total %d\n", s.UploadFailTotal)

	fmt.Fprintf(w, "# HELP structurebuilder_r2_mirror_last_success_unix Unix time of the last successful upload.\n")
	fmt.Fprintf(w, "# TYPE structurebuilder_r2_mirror_last_success_unix gauge\n")
	fmt.Fprintf(w, "structurebuilder_r2_mirror_last_success_unix %d\n", s.LastSuccessUnix)
}
