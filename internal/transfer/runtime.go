package transfer

import (
	"sync"

	"github.com/five82/jvlbi/internal/dot"
	"github.com/five82/jvlbi/internal/iface"
	"github.com/five82/jvlbi/internal/worker"
)

// State is one node of the no_transfer -> connected -> running -> no_transfer
// state table every transfer mode shares (§4.8).
type State int

const (
	StateNoTransfer State = iota
	StateConnected
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateNoTransfer:
		return "no_transfer"
	case StateConnected:
		return "connected"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ProducerParams are the byte-range/repeat parameters an `on` command sets
// on the running chain's source step.
type ProducerParams struct {
	StartByte uint64
	EndByte   uint64
	HaveRange bool
	ByteCount uint64
	HaveCount bool
	Repeat    bool
}

// Runtime bundles one transfer's shared, process-wide collaborators and its
// current state-machine position. Every transfer mode operates on a
// *Runtime passed into its state-machine methods.
type Runtime struct {
	mu sync.Mutex

	state   State
	mode    string
	submode string

	CaptureBoard iface.CaptureBoard
	DiskArray    iface.DiskArray
	Transport    iface.Transport
	Mountpoints  []string
	Datastreams  *dot.DatastreamMap

	chain    ChainHandle
	producer ProducerParams
	progress worker.Progress

	lastError error
}

// NewRuntime constructs an idle Runtime over the given facades.
func NewRuntime(board iface.CaptureBoard, disk iface.DiskArray, transport iface.Transport) *Runtime {
	return &Runtime{
		CaptureBoard: board,
		DiskArray:    disk,
		Transport:    transport,
	}
}

// State returns the runtime's current transfer-mode state.
func (rt *Runtime) State() State {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state
}

// Mode returns the active transfer mode's name, or "" if idle.
func (rt *Runtime) Mode() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.mode
}

// LastError returns the most recently recorded error, retrievable via the
// query surface (§7).
func (rt *Runtime) LastError() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.lastError
}

// Producer returns the current producer byte-range/count parameters set by
// the last successful On call.
func (rt *Runtime) Producer() ProducerParams {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.producer
}

// Running reports whether the runtime is currently in the running state;
// source steps poll this to decide whether to keep producing data.
func (rt *Runtime) Running() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state == StateRunning
}

func (rt *Runtime) setLastError(err error) {
	rt.mu.Lock()
	rt.lastError = err
	rt.mu.Unlock()
}

// Progress returns the current transfer's byte/block counters, surfaced
// through the query command surface (§6).
func (rt *Runtime) Progress() worker.Progress {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.progress
}

// addProgress records one more block of n bytes moved by the active
// chain's sink step.
func (rt *Runtime) addProgress(n int) {
	rt.mu.Lock()
	rt.progress.BlocksComplete++
	rt.progress.BytesComplete += uint64(n)
	rt.mu.Unlock()
}

// reset returns the runtime to no_transfer, clearing mode/submode and the
// active chain — the goroutine every connect starts to wait on its chain
// calls it when the chain ends, and off (immediate modes) and disconnect
// call it directly.
func (rt *Runtime) reset() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.state = StateNoTransfer
	rt.mode = ""
	rt.submode = ""
	rt.chain = nil
	rt.producer = ProducerParams{}
	rt.progress = worker.Progress{}
}
