// Package config provides configuration types and defaults for jvlbi.
package config

import "fmt"

// Protocol identifies a supported transport protocol string (§6).
type Protocol string

const (
	ProtoTCP     Protocol = "tcp"
	ProtoUDP     Protocol = "udp"     // alias for udps
	ProtoPUDP    Protocol = "pudp"    // plain UDP, no sequence number
	ProtoUDPS    Protocol = "udps"    // UDP with prepended 64-bit sequence number
	ProtoUDPSNOR Protocol = "udpsnor" // sequence numbers recorded, no reordering
	ProtoRTCP    Protocol = "rtcp"    // TCP with reversed connect roles
	ProtoUnix    Protocol = "unix"    // AF_UNIX
)

// Normalize resolves the "udp" alias to "udps" per §6.
func (p Protocol) Normalize() Protocol {
	if p == ProtoUDP {
		return ProtoUDPS
	}
	return p
}

// HasSequenceNumbers reports whether frames on this protocol carry the
// prepended 64-bit sequence number used for statistics and reordering.
func (p Protocol) HasSequenceNumbers() bool {
	switch p.Normalize() {
	case ProtoUDPS, ProtoUDPSNOR:
		return true
	default:
		return false
	}
}

// Reorders reports whether out-of-order frames are resequenced before
// being handed to the next chain step.
func (p Protocol) Reorders() bool {
	return p.Normalize() == ProtoUDPS
}

// Valid reports whether p is one of the recognized protocol strings.
func (p Protocol) Valid() bool {
	switch p {
	case ProtoTCP, ProtoUDP, ProtoPUDP, ProtoUDPS, ProtoUDPSNOR, ProtoRTCP, ProtoUnix:
		return true
	default:
		return false
	}
}

// Default constants for network and recording parameters.
const (
	// DefaultMTU is the Ethernet-class default MTU in bytes.
	DefaultMTU uint32 = 1500

	// DefaultBlocksize is the default block size in bytes when the solver
	// is otherwise unconstrained.
	DefaultBlocksize uint64 = 128 * 1024

	// DefaultRcvBufSize is the default socket receive buffer size in bytes.
	DefaultRcvBufSize int = 4 * 1024 * 1024

	// DefaultSndBufSize is the default socket send buffer size in bytes.
	DefaultSndBufSize int = 4 * 1024 * 1024

	// DefaultInterPacketDelayNs is the default inter-packet delay. A
	// negative value means "use the theoretical rate-derived delay".
	DefaultInterPacketDelayNs int64 = -1

	// DefaultACKPeriod is the default "every K-th packet gets backtraffic"
	// acknowledgement period for UDP-family protocols.
	DefaultACKPeriod uint32 = 10

	// DefaultQueueDepth is the default bounded-queue capacity between
	// adjacent chain steps.
	DefaultQueueDepth int = 64

	// DefaultFrameSize4K is unused placeholder removed; kept absent on
	// purpose (no analog in this domain).
)

// HostPort is one destination or source socket endpoint, with an optional
// filename suffix used by disk2net-family transfer modes (§6).
type HostPort struct {
	Host   string
	Port   int
	Suffix string
}

// String renders the endpoint as "host:port" or "host:port:suffix".
func (hp HostPort) String() string {
	if hp.Suffix != "" {
		return fmt.Sprintf("%s:%d:%s", hp.Host, hp.Port, hp.Suffix)
	}
	return fmt.Sprintf("%s:%d", hp.Host, hp.Port)
}

// NetParams holds the network-level parameters a transfer-mode connect
// carries into the constraint solver (§6 Network parameters).
type NetParams struct {
	Protocol           Protocol
	MTU                uint32
	Blocksize          uint64
	RcvBufSize         int
	SndBufSize         int
	InterPacketDelayNs int64
	ACKPeriod          uint32
	Endpoints          []HostPort
}

// DefaultNetParams returns network parameters populated with the package
// defaults for the given protocol.
func DefaultNetParams(proto Protocol) NetParams {
	return NetParams{
		Protocol:           proto.Normalize(),
		MTU:                DefaultMTU,
		Blocksize:          DefaultBlocksize,
		RcvBufSize:         DefaultRcvBufSize,
		SndBufSize:         DefaultSndBufSize,
		InterPacketDelayNs: DefaultInterPacketDelayNs,
		ACKPeriod:          DefaultACKPeriod,
	}
}

// Validate checks the network parameters for errors.
func (n *NetParams) Validate() error {
	if !n.Protocol.Valid() {
		return fmt.Errorf("unrecognized protocol %q", n.Protocol)
	}
	if n.MTU == 0 {
		return fmt.Errorf("mtu must be positive, got %d", n.MTU)
	}
	if n.RcvBufSize < 0 {
		return fmt.Errorf("rcv_buf_size must be non-negative, got %d", n.RcvBufSize)
	}
	if n.SndBufSize < 0 {
		return fmt.Errorf("snd_buf_size must be non-negative, got %d", n.SndBufSize)
	}
	if n.ACKPeriod == 0 {
		return fmt.Errorf("ack_period must be at least 1, got %d", n.ACKPeriod)
	}
	if len(n.Endpoints) == 0 {
		return fmt.Errorf("at least one (host, port) endpoint is required")
	}
	return nil
}

// Config holds all runtime-wide configuration for the jvlbi engine: the
// generalization of the teacher's preset/Config pattern to network
// parameters, mountpoint patterns, and transfer defaults.
type Config struct {
	// Paths
	LogDir string

	// Mountpoint patterns accepted by internal/mount.ExpandMountpoints:
	// shell globs, or "re:<pattern>" for an anchored regexp.
	MountpointPatterns []string

	// Default network parameters merged under an explicit per-connect
	// override.
	Net NetParams

	// QueueDepth is the default bounded-queue capacity for chain steps.
	QueueDepth int

	// Compression toggles whether the bit-mask compression planner runs
	// by default when a connect doesn't specify otherwise.
	Compression bool

	// FixedFrameSize pins the frame size for protocols/formats that
	// require it (0 means "let the solver derive it").
	FixedFrameSize uint64

	// Debug options
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig(logDir string, mountpointPatterns []string) *Config {
	return &Config{
		LogDir:             logDir,
		MountpointPatterns: mountpointPatterns,
		Net:                DefaultNetParams(ProtoTCP),
		QueueDepth:         DefaultQueueDepth,
		Compression:        false,
		FixedFrameSize:     0,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.MountpointPatterns) == 0 {
		return fmt.Errorf("at least one mountpoint pattern is required")
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be at least 1, got %d", c.QueueDepth)
	}
	if err := c.Net.Validate(); err != nil {
		return fmt.Errorf("invalid network parameters: %w", err)
	}
	return nil
}
