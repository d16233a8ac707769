package transfer

import (
	"strconv"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// Mode is one named transfer mode's command surface (§4.8, §6). Every
// command beyond Query returns a status reply; Query returns a field list
// instead, mirroring the "(is_query, argv, runtime&)" shape of the VSI-S
// command table a mode's entry point implements.
type Mode interface {
	Name() string
	Connect(argv []string, rt *Runtime) Reply
	On(argv []string, rt *Runtime) Reply
	Off(rt *Runtime) Reply
	Disconnect(rt *Runtime) Reply
	Query(rt *Runtime) Reply
}

// ChainBuilder constructs the chain a mode's connect should run, given the
// connect command's arguments and the runtime it will operate on.
type ChainBuilder func(argv []string, rt *Runtime) (ChainHandle, error)

// ChainHandle is the minimal surface baseMode needs from a built chain;
// satisfied by *chain.Chain.
type ChainHandle interface {
	Run() error
	Stop(gentle bool) error
	Wait()
	DelayedDisable()
}

// baseMode implements the no_transfer -> connected -> running -> no_transfer
// state table shared by every concrete transfer mode. TwoStage controls
// off's behavior: an immediate mode terminates the chain on off; a
// two-stage mode only pauses the source, staying in connected.
type baseMode struct {
	name     string
	build    ChainBuilder
	twoStage bool
}

func (m *baseMode) Name() string { return m.name }

// Connect builds and runs a chain, transitioning no_transfer -> connected.
// Only valid from no_transfer.
func (m *baseMode) Connect(argv []string, rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state != StateNoTransfer {
		state := rt.state
		rt.mu.Unlock()
		return replyError(m.name, CodeWrongState, "connect is only valid from no_transfer, currently "+state.String())
	}
	rt.mu.Unlock()

	c, err := m.build(argv, rt)
	if err != nil {
		rt.setLastError(err)
		code := CodeFailure
		if jvlbierrors.IsKind(err, jvlbierrors.KindSyntax) {
			code = CodeSyntax
		}
		return replyError(m.name, code, err.Error())
	}

	if err := c.Run(); err != nil {
		rt.setLastError(err)
		return replyError(m.name, CodeFailure, "failed to start chain: "+err.Error())
	}

	rt.mu.Lock()
	rt.chain = c
	rt.state = StateConnected
	rt.mode = m.name
	rt.mu.Unlock()

	go func() {
		c.Wait()
		rt.reset()
	}()

	return replyOK(m.name, "")
}

// On sets the producer's byte-range/repeat parameters and flips the chain
// into running. Only valid from connected.
func (m *baseMode) On(argv []string, rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state != StateConnected {
		state := rt.state
		rt.mu.Unlock()
		return replyError(m.name, CodeWrongState, "on is only valid from connected, currently "+state.String())
	}
	rt.mu.Unlock()

	params, err := parseProducerParams(argv)
	if err != nil {
		rt.setLastError(err)
		return replyError(m.name, CodeSyntax, err.Error())
	}

	rt.mu.Lock()
	rt.producer = params
	rt.state = StateRunning
	rt.mu.Unlock()

	return replyOK(m.name, "")
}

// Off terminates (immediate modes) or pauses (two-stage modes) the running
// transfer. Only valid from running.
func (m *baseMode) Off(rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state != StateRunning {
		state := rt.state
		rt.mu.Unlock()
		return replyError(m.name, CodeWrongState, "off is only valid from running, currently "+state.String())
	}
	c := rt.chain
	rt.mu.Unlock()

	if m.twoStage {
		c.DelayedDisable()
		rt.mu.Lock()
		rt.state = StateConnected
		rt.mu.Unlock()
		return replyOK(m.name, "")
	}

	if err := c.Stop(false); err != nil {
		rt.setLastError(err)
		return replyError(m.name, CodeFailure, err.Error())
	}
	rt.reset()
	return replyOK(m.name, "")
}

// Disconnect stops the chain unconditionally and returns to no_transfer.
// Valid from any non-idle state.
func (m *baseMode) Disconnect(rt *Runtime) Reply {
	rt.mu.Lock()
	if rt.state == StateNoTransfer {
		rt.mu.Unlock()
		return replyError(m.name, CodeWrongState, "disconnect is not valid from no_transfer")
	}
	c := rt.chain
	rt.mu.Unlock()

	if c != nil {
		if err := c.Stop(false); err != nil {
			rt.setLastError(err)
		}
	}
	rt.reset()
	return replyOK(m.name, "")
}

// Query reports the mode's current state, producer parameters, and
// byte/block progress, valid from any state (§6's command/query surface).
func (m *baseMode) Query(rt *Runtime) Reply {
	rt.mu.Lock()
	state := rt.state
	producer := rt.producer
	progress := rt.progress
	rt.mu.Unlock()

	fields := []string{
		"state=" + state.String(),
		"bytes=" + strconv.FormatUint(progress.BytesComplete, 10),
		"blocks=" + strconv.Itoa(progress.BlocksComplete),
	}
	if producer.HaveCount {
		fields = append(fields, "count="+strconv.FormatUint(producer.ByteCount, 10))
	}
	if producer.HaveRange {
		fields = append(fields,
			"start="+strconv.FormatUint(producer.StartByte, 10),
			"end="+strconv.FormatUint(producer.EndByte, 10))
	}

	return Reply{Mode: m.name, Query: true, Code: CodeOK, Fields: fields}
}

// parseProducerParams requires every `on` command to carry an explicit
// start/end byte pair or an explicit byte count; a bare `on` with neither
// is a syntax error (an Open Question resolved this way: ambiguity about
// "how much to send" must never be silently defaulted).
func parseProducerParams(argv []string) (ProducerParams, error) {
	var p ProducerParams
	if len(argv) == 0 {
		return p, jvlbierrors.NewSyntaxError("transfer: 'on' requires start/end bytes or a byte count")
	}

	switch argv[0] {
	case "range":
		if len(argv) != 3 {
			return p, jvlbierrors.NewSyntaxError("transfer: 'on range' requires start and end byte arguments")
		}
		start, err := strconv.ParseUint(argv[1], 10, 64)
		if err != nil {
			return p, jvlbierrors.NewSyntaxError("transfer: invalid start byte: " + argv[1])
		}
		end, err := strconv.ParseUint(argv[2], 10, 64)
		if err != nil {
			return p, jvlbierrors.NewSyntaxError("transfer: invalid end byte: " + argv[2])
		}
		if end < start {
			return p, jvlbierrors.NewSyntaxError("transfer: end byte precedes start byte")
		}
		p.StartByte, p.EndByte, p.HaveRange = start, end, true
		return p, nil
	case "count":
		if len(argv) < 2 {
			return p, jvlbierrors.NewSyntaxError("transfer: 'on count' requires a byte count argument")
		}
		count, err := strconv.ParseUint(argv[1], 10, 64)
		if err != nil {
			return p, jvlbierrors.NewSyntaxError("transfer: invalid byte count: " + argv[1])
		}
		p.ByteCount, p.HaveCount = count, true
		p.Repeat = len(argv) > 2 && argv[2] == "repeat"
		return p, nil
	default:
		return p, jvlbierrors.NewSyntaxError("transfer: unrecognized 'on' argument form: " + argv[0])
	}
}
