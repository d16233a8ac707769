package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type countingReporter struct {
	NullReporter
	warnings int
	errors   int
}

func (c *countingReporter) Warning(string)       { c.warnings++ }
func (c *countingReporter) Error(ReporterError)  { c.errors++ }

func TestCompositeReporterFansOut(t *testing.T) {
	a := &countingReporter{}
	b := &countingReporter{}
	composite := NewCompositeReporter(a, b)

	composite.Warning("disk pack nearly full")
	composite.Error(ReporterError{Title: "resource", Code: 4})

	if a.warnings != 1 || b.warnings != 1 {
		t.Errorf("expected both reporters to receive the warning, got a=%d b=%d", a.warnings, b.warnings)
	}
	if a.errors != 1 || b.errors != 1 {
		t.Errorf("expected both reporters to receive the error, got a=%d b=%d", a.errors, b.errors)
	}
}

func TestNullReporterDiscardsEverything(t *testing.T) {
	var r Reporter = NullReporter{}
	r.Hardware(HardwareSummary{Hostname: "mark5-01"})
	r.ConnectStarted(ConnectSummary{Mode: "disk2net"})
	r.StateChanged(StateChange{Mode: "disk2net", FromState: "off", ToState: "on"})
	r.TransferProgress(TransferProgress{BytesComplete: 100})
	r.TransferComplete(TransferOutcome{Mode: "disk2net"})
	r.Warning("noop")
	r.Error(ReporterError{})
	r.OperationComplete("noop")
	r.Verbose("noop")
}

func TestJSONReporterEmitsOneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Hardware(HardwareSummary{Hostname: "mark5-01", CaptureBoard: "Mark5B-DIM", MountpointsN: 8, QueueDepth: 64})
	r.TransferComplete(TransferOutcome{Mode: "disk2net", BytesMoved: 1024})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d: %q", len(lines), buf.String())
	}

	var hardware map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &hardware); err != nil {
		t.Fatalf("failed to unmarshal hardware event: %v", err)
	}
	if hardware["type"] != "hardware" {
		t.Errorf("expected type=hardware, got %v", hardware["type"])
	}
	if hardware["hostname"] != "mark5-01" {
		t.Errorf("expected hostname=mark5-01, got %v", hardware["hostname"])
	}

	var complete map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &complete); err != nil {
		t.Fatalf("failed to unmarshal transfer_complete event: %v", err)
	}
	if complete["type"] != "transfer_complete" {
		t.Errorf("expected type=transfer_complete, got %v", complete["type"])
	}
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	for i := 0; i < 5; i++ {
		r.TransferProgress(TransferProgress{BytesComplete: 0, BytesTotal: 1000})
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected repeated 0%% progress to emit once, got %d lines", len(lines))
	}
}
