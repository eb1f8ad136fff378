package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	TicksExecuted        atomic.Int64
	PushSuccess          atomic.Int64
	PushLocationFailures atomic.Int64
	PushStatusFailures   atomic.Int64

	DBWriteSuccess    atomic.Int64
	DBWriteFailures   atomic.Int64
	DBChannelDrops    atomic.Int64
	StateChannelDrops atomic.Int64
	AlertChannelDrops atomic.Int64
	WSChannelDrops    atomic.Int64

	RecallSucceeded atomic.Int64
	RecallFailed    atomic.Int64
)

func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "simulator_ticks_total %d\n", TicksExecuted.Load())
	fmt.Fprintf(w, "simulator_push_success_total %d\n", PushSuccess.Load())
	fmt.Fprintf(w, "simulator_push_location_failures_total %d\n", PushLocationFailures.Load())
	fmt.Fprintf(w, "simulator_push_status_failures_total %d\n", PushStatusFailures.Load())
	fmt.Fprintf(w, "simulator_db_write_success_total %d\n", DBWriteSuccess.Load())
	fmt.Fprintf(w, "simulator_db_write_failures_total %d\n", DBWriteFailures.Load())
	fmt.Fprintf(w, "simulator_db_channel_drops_total %d\n", DBChannelDrops.Load())
	fmt.Fprintf(w, "simulator_state_channel_drops_total %d\n", StateChannelDrops.Load())
	fmt.Fprintf(w, "simulator_alert_channel_drops_total %d\n", AlertChannelDrops.Load())
	fmt.Fprintf(w, "simulator_ws_channel_drops_total %d\n", WSChannelDrops.Load())
	fmt.Fprintf(w, "recall_vehicles_succeeded_total %d\n", RecallSucceeded.Load())
	fmt.Fprintf(w, "recall_vehicles_failed_total %d\n", RecallFailed.Load())
}
