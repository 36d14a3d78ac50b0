package main

import (
	"fmt"
	"io"

	"voxelgrid.ai/internal/persistence/indexdb"
	"voxelgrid.ai/internal/sim/world"
)

// writeMetrics renders the minimal Prometheus text format.
func writeMetrics(w io.Writer, worldID string, s world.Stats, decodeErrors int64, idx *indexdb.SQLiteIndex) {
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s{world=%q} %d\n", name, worldID, v)
	}
	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s{world=%q} %d\n", name, worldID, v)
	}
	gauge("voxelgrid_world_clients", "Connected clients.", s.Clients)
	gauge("voxelgrid_world_loaded_chunks", "Chunks resident in the server store.", s.LoadedChunks)
	counter("voxelgrid_world_edits_total", "Accepted block edits.", s.Edits)
	counter("voxelgrid_world_rejected_total", "Edits refused by the store.", s.Rejected)
	counter("voxelgrid_world_dropped_total", "Outbound packets dropped on full outboxes and requests from unknown sessions.", s.Dropped)
	counter("voxelgrid_world_flushes_total", "Chunk db flushes.", s.Flushes)
	counter("voxelgrid_ws_decode_errors_total", "Inbound packets dropped because they did not decode.", decodeErrors)
	if idx != nil {
		st := idx.Stats()
		gauge("voxelgrid_index_queue_depth", "Pending sqlite index writes.", int64(st.QueueDepth))
		counter("voxelgrid_index_dropped_audits_total", "Audit rows dropped by the index queue.", st.DropAuditTotal)
		counter("voxelgrid_index_dropped_chunks_total", "Chunk rows dropped by the index queue.", st.DropChunkTotal)
	}
}
