// Package jvlbi provides a Go library for driving a VLBI real-time
// data-capture and transport engine: mountpoint-striped recording, the
// VSI-S-style transfer-mode command surface (connect/on/off/disconnect),
// and the constraint-solver/compression/header machinery a transfer mode's
// chain is built from.
//
// Basic usage:
//
//	engine, err := jvlbi.New(board, disk, transport,
//	    jvlbi.WithMountpointPatterns("/mnt/disk*"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply := engine.Connect("file2net", []string{"scan001", "/mnt/disk0"})
//	fmt.Println(reply)
package jvlbi

import (
	"context"
	"fmt"

	"github.com/five82/jvlbi/internal/config"
	"github.com/five82/jvlbi/internal/dot"
	"github.com/five82/jvlbi/internal/iface"
	"github.com/five82/jvlbi/internal/transfer"
)

// Re-exported so callers never need to import internal/config directly.
type (
	Protocol   = config.Protocol
	NetParams  = config.NetParams
	HostPort   = config.HostPort
	Reply      = transfer.Reply
	State      = transfer.State
)

const (
	ProtoTCP     = config.ProtoTCP
	ProtoUDP     = config.ProtoUDP
	ProtoPUDP    = config.ProtoPUDP
	ProtoUDPS    = config.ProtoUDPS
	ProtoUDPSNOR = config.ProtoUDPSNOR
	ProtoRTCP    = config.ProtoRTCP
	ProtoUnix    = config.ProtoUnix
)

// VSI-S reply codes (§6, §7), re-exported so callers never need to import
// internal/transfer directly to interpret a Reply's Code.
const (
	CodeOK         = transfer.CodeOK
	CodePending    = transfer.CodePending
	CodeFailure    = transfer.CodeFailure
	CodeWrongState = transfer.CodeWrongState
	CodeSyntax     = transfer.CodeSyntax
)

// Engine is the main entry point for driving the capture/transport engine.
type Engine struct {
	config      *config.Config
	runtime     *transfer.Runtime
	modes       map[string]transfer.Mode
	datastreams *dot.DatastreamMap
	clock       *dot.Clock
}

// Option configures an Engine at construction time.
type Option func(*config.Config)

// WithMountpointPatterns sets the shell-glob or "re:"-prefixed regexp
// patterns internal/mount expands into candidate recording roots.
func WithMountpointPatterns(patterns ...string) Option {
	return func(c *config.Config) {
		c.MountpointPatterns = patterns
	}
}

// WithNetParams overrides the default network parameters merged under a
// connect's explicit per-call overrides.
func WithNetParams(n NetParams) Option {
	return func(c *config.Config) {
		c.Net = n
	}
}

// WithQueueDepth sets the default bounded-queue capacity between adjacent
// chain steps.
func WithQueueDepth(depth int) Option {
	return func(c *config.Config) {
		c.QueueDepth = depth
	}
}

// WithCompression toggles whether the bit-mask compression planner runs by
// default when a connect doesn't specify otherwise.
func WithCompression(enabled bool) Option {
	return func(c *config.Config) {
		c.Compression = enabled
	}
}

// WithVerbose enables verbose logging.
func WithVerbose() Option {
	return func(c *config.Config) {
		c.Verbose = true
	}
}

// New creates an Engine over the given capture board, disk array, and
// network transport facades.
func New(board iface.CaptureBoard, disk iface.DiskArray, transport iface.Transport, opts ...Option) (*Engine, error) {
	cfg := config.NewConfig(".", []string{"*"})

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jvlbi: invalid configuration: %w", err)
	}

	rt := transfer.NewRuntime(board, disk, transport)
	rt.Datastreams = dot.NewDatastreamMap()

	return &Engine{
		config:      cfg,
		runtime:     rt,
		modes:       transfer.Modes(),
		datastreams: rt.Datastreams,
		clock:       dot.NewClock(board),
	}, nil
}

// Connect runs the named transfer mode's connect command.
func (e *Engine) Connect(mode string, argv []string) Reply {
	m, ok := e.modes[mode]
	if !ok {
		return Reply{Mode: mode, Code: transfer.CodeSyntax, Text: "unrecognized transfer mode: " + mode}
	}
	return m.Connect(argv, e.runtime)
}

// On runs the active mode's on command.
func (e *Engine) On(mode string, argv []string) Reply {
	m, ok := e.modes[mode]
	if !ok {
		return Reply{Mode: mode, Code: transfer.CodeSyntax, Text: "unrecognized transfer mode: " + mode}
	}
	return m.On(argv, e.runtime)
}

// Off runs the active mode's off command.
func (e *Engine) Off(mode string) Reply {
	m, ok := e.modes[mode]
	if !ok {
		return Reply{Mode: mode, Code: transfer.CodeSyntax, Text: "unrecognized transfer mode: " + mode}
	}
	return m.Off(e.runtime)
}

// Disconnect runs the active mode's disconnect command.
func (e *Engine) Disconnect(mode string) Reply {
	m, ok := e.modes[mode]
	if !ok {
		return Reply{Mode: mode, Code: transfer.CodeSyntax, Text: "unrecognized transfer mode: " + mode}
	}
	return m.Disconnect(e.runtime)
}

// Query runs the named mode's query command, returning a field list
// instead of a status reply (§6's command/query surface).
func (e *Engine) Query(mode string) Reply {
	m, ok := e.modes[mode]
	if !ok {
		return Reply{Mode: mode, Query: true, Code: transfer.CodeSyntax, Text: "unrecognized transfer mode: " + mode}
	}
	return m.Query(e.runtime)
}

// State returns the runtime's current transfer-mode state.
func (e *Engine) State() State {
	return e.runtime.State()
}

// LastError returns the most recently recorded error, surfaced via the
// query command surface (§7).
func (e *Engine) LastError() error {
	return e.runtime.LastError()
}

// Datastreams exposes the datastream tag map so callers can register VDIF
// filters before connecting a datastream-aware recording mode.
func (e *Engine) Datastreams() *dot.DatastreamMap {
	return e.datastreams
}

// StartClock begins the DOT clock service against the engine's capture
// board. Callers should defer ShutdownClock.
func (e *Engine) StartClock(ctx context.Context) {
	e.clock.Init(ctx)
}

// ShutdownClock stops the DOT clock service; safe to call more than once.
func (e *Engine) ShutdownClock() {
	e.clock.Shutdown()
}
