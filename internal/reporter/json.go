package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events consumable by an external operator
// console or log shipper.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{
		writer:             os.Stdout,
		lastProgressBucket: -1,
	}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":          "hardware",
		"hostname":      summary.Hostname,
		"capture_board": summary.CaptureBoard,
		"mountpoints":   summary.MountpointsN,
		"queue_depth":   summary.QueueDepth,
		"timestamp":     r.timestamp(),
	})
}

func (r *JSONReporter) ConnectStarted(summary ConnectSummary) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":      "connect_started",
		"mode":      summary.Mode,
		"protocol":  summary.Protocol,
		"endpoints": summary.Endpoints,
		"blocksize": summary.Blocksize,
		"mtu":       summary.MTU,
		"compress":  summary.Compress,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) StateChanged(change StateChange) {
	r.write(map[string]interface{}{
		"type":       "state_changed",
		"mode":       change.Mode,
		"from_state": change.FromState,
		"to_state":   change.ToState,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) TransferProgress(progress TransferProgress) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	var percent float64
	if progress.BytesTotal > 0 {
		percent = float64(progress.BytesComplete) / float64(progress.BytesTotal) * 100
	}
	bucket := int(percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":           "transfer_progress",
		"bytes_complete": progress.BytesComplete,
		"bytes_total":    progress.BytesTotal,
		"percent":        percent,
		"rate":           progress.Rate,
		"eta_seconds":    int64(progress.ETA.Seconds()),
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) TransferComplete(summary TransferOutcome) {
	r.write(map[string]interface{}{
		"type":             "transfer_complete",
		"mode":             summary.Mode,
		"bytes_moved":      summary.BytesMoved,
		"duration_seconds": int64(summary.Duration.Seconds()),
		"average_rate":     summary.AverageRate,
		"packets_lost":     summary.PacketsLost,
		"packets_total":    summary.PacketsTotal,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"code":       err.Code,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]interface{}{
		"type":      "operation_complete",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
