package transfer

import (
	"context"
	"strconv"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/userdir"
)

// scanSetMode is administrative rather than a continuous transfer: it opens
// the disk array, selects a scan by index out of its user directory, and
// repositions the play pointer to that scan's start — all synchronously,
// with no running chain. It implements Mode directly instead of embedding
// baseMode since it has no on/running phase.
type scanSetMode struct{}

// NewScanSet builds the scan_set mode.
func NewScanSet() Mode {
	return scanSetMode{}
}

func (scanSetMode) Name() string { return "scan_set" }

// Connect opens the disk array, moving the runtime to connected. It does not
// read the user directory (On does) and does not start any data path.
func (m scanSetMode) Connect(argv []string, rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state != StateNoTransfer {
		state := rt.state
		rt.mu.Unlock()
		return replyError(m.Name(), CodeWrongState, "connect is only valid from no_transfer, currently "+state.String())
	}
	rt.mu.Unlock()

	if err := rt.DiskArray.Open(context.Background()); err != nil {
		rt.setLastError(err)
		return replyError(m.Name(), CodeFailure, err.Error())
	}

	rt.mu.Lock()
	rt.state = StateConnected
	rt.mode = m.Name()
	rt.mu.Unlock()
	return replyOK(m.Name(), "")
}

// On selects a scan by index (argv[0]) and repositions the disk array's
// user-directory play pointer to that scan's start byte. scan_set never
// transitions to running: it stays connected so further scan_set commands
// can reselect.
func (m scanSetMode) On(argv []string, rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state != StateConnected {
		state := rt.state
		rt.mu.Unlock()
		return replyError(m.Name(), CodeWrongState, "scan_set is only valid from connected, currently "+state.String())
	}
	rt.mu.Unlock()

	if len(argv) < 1 {
		err := jvlbierrors.NewSyntaxError("scan_set: requires a scan index")
		rt.setLastError(err)
		return replyError(m.Name(), CodeSyntax, err.Error())
	}
	index, err := strconv.Atoi(argv[0])
	if err != nil {
		serr := jvlbierrors.NewSyntaxError("scan_set: invalid scan index: " + argv[0])
		rt.setLastError(serr)
		return replyError(m.Name(), CodeSyntax, serr.Error())
	}

	raw, err := rt.DiskArray.ReadUserDir()
	if err != nil {
		rt.setLastError(err)
		return replyError(m.Name(), CodeFailure, err.Error())
	}
	layout, dir, err := userdir.SelectLayout(raw)
	if err != nil {
		rt.setLastError(err)
		return replyError(m.Name(), CodeFailure, err.Error())
	}
	if index < 0 || index >= len(dir.Scans) {
		serr := jvlbierrors.NewSyntaxError("scan_set: scan index out of range")
		rt.setLastError(serr)
		return replyError(m.Name(), CodeSyntax, serr.Error())
	}

	dir.PlayPointer = dir.Scans[index].Start
	if err := rt.DiskArray.WriteUserDir(layout.Serialize(dir)); err != nil {
		rt.setLastError(err)
		return replyError(m.Name(), CodeFailure, err.Error())
	}
	return replyOK(m.Name(), dir.Scans[index].Name)
}

// Off is a no-op for scan_set: there is no running phase to terminate.
func (m scanSetMode) Off(rt *Runtime) Reply {
	return replyError(m.Name(), CodeWrongState, "off is not valid for scan_set")
}

// Query reports the current state only; scan_set has no byte-progress
// counters since it never runs a data-moving chain.
func (m scanSetMode) Query(rt *Runtime) Reply {
	rt.mu.Lock()
	state := rt.state
	rt.mu.Unlock()
	return Reply{Mode: m.Name(), Query: true, Code: CodeOK, Fields: []string{"state=" + state.String()}}
}

// Disconnect closes the disk array and returns to no_transfer.
func (m scanSetMode) Disconnect(rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state == StateNoTransfer {
		rt.mu.Unlock()
		return replyError(m.Name(), CodeWrongState, "disconnect is not valid from no_transfer")
	}
	rt.mu.Unlock()

	if err := rt.DiskArray.Close(context.Background()); err != nil {
		rt.setLastError(err)
	}
	rt.reset()
	return replyOK(m.Name(), "")
}
