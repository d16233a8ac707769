// Package constraints implements the data-rate/packet-size solver: given
// network MTU, protocol overheads, optional per-frame compression, and an
// optional fixed frame size, it derives a consistent set of block, read, and
// write sizes.
package constraints

import (
	"fmt"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// Name identifies one entry of a constraint Set.
type Name int

const (
	Framesize Name = iota
	Blocksize
	MTU
	CompressOffset
	ApplicationOverhead
	ProtocolOverhead
	ReadSize
	WriteSize
	NMTU
)

func (n Name) String() string {
	switch n {
	case Framesize:
		return "framesize"
	case Blocksize:
		return "blocksize"
	case MTU:
		return "mtu"
	case CompressOffset:
		return "compress_offset"
	case ApplicationOverhead:
		return "application_overhead"
	case ProtocolOverhead:
		return "protocol_overhead"
	case ReadSize:
		return "read_size"
	case WriteSize:
		return "write_size"
	case NMTU:
		return "n_mtu"
	default:
		return "unknown"
	}
}

// Unconstrained is the sentinel value meaning "no bound", used for n_mtu on
// TCP-family protocols.
const Unconstrained uint64 = ^uint64(0)

// Set is a mapping from constraint name to value. A name absent from the
// map is treated as unset (distinct from Unconstrained, which is a valid
// present value).
type Set map[Name]uint64

// Clone returns a shallow copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Set) get(n Name) (uint64, bool) {
	v, ok := s[n]
	return v, ok
}

func (s Set) dump() string {
	out := "{"
	for _, n := range []Name{Framesize, Blocksize, MTU, CompressOffset, ApplicationOverhead, ProtocolOverhead, ReadSize, WriteSize, NMTU} {
		if v, ok := s[n]; ok {
			if v == Unconstrained {
				out += fmt.Sprintf("%s=unconstrained ", n)
			} else {
				out += fmt.Sprintf("%s=%d ", n, v)
			}
		}
	}
	return out + "}"
}

// Compressor abstracts a trackmask.Solution's size transforms so this
// package never imports internal/trackmask directly (keeping the solver
// testable with a trivial identity compressor).
type Compressor interface {
	CompressedSize(uncompressed uint64) uint64
	UncompressedSize(compressed uint64) uint64
}

// IdentityCompressor is a no-op Compressor used when no compression plan is
// configured.
type IdentityCompressor struct{}

func (IdentityCompressor) CompressedSize(n uint64) uint64   { return n }
func (IdentityCompressor) UncompressedSize(n uint64) uint64 { return n }

// DeriveOverheads returns the protocol overhead and n_mtu for proto (§4.2's
// derived constants). hasSeqNum is not consulted: the 8-byte sequence-number
// application overhead is not part of either result.
func DeriveOverheads(proto ProtocolKind, hasSeqNum bool) (protocolOverhead, nMTU uint64) {
	switch proto {
	case ProtoTCPFamily:
		protocolOverhead = 20 + 24
		nMTU = Unconstrained
	case ProtoUDPFamily:
		protocolOverhead = 20 + 8
		nMTU = 1
	}
	return protocolOverhead, nMTU
}

// ProtocolKind classifies a protocol for overhead derivation purposes.
type ProtocolKind int

const (
	ProtoTCPFamily ProtocolKind = iota
	ProtoUDPFamily
)

func truncTo8(v uint64) uint64 {
	return v - (v % 8)
}

// Validate checks every output invariant listed in §4.2. On the first
// violated invariant it returns a constraint error carrying a printable dump
// of the set.
func Validate(s Set) error {
	fail := func(msg string) error {
		return jvlbierrors.NewConstraintError(msg, s.dump())
	}

	required := []Name{Blocksize, ReadSize, WriteSize, MTU, ProtocolOverhead, ApplicationOverhead, CompressOffset}
	for _, n := range required {
		if _, ok := s.get(n); !ok {
			return fail(fmt.Sprintf("%s is not set", n))
		}
	}

	blocksize := s[Blocksize]
	readSize := s[ReadSize]
	writeSize := s[WriteSize]
	mtu := s[MTU]
	protoOverhead := s[ProtocolOverhead]
	appOverhead := s[ApplicationOverhead]
	compressOffset := s[CompressOffset]

	if blocksize == 0 || blocksize%8 != 0 {
		return fail("blocksize must be positive and a multiple of 8")
	}
	if compressOffset%8 != 0 {
		return fail("compress_offset must be a multiple of 8")
	}
	if readSize == 0 {
		return fail("read_size must be positive")
	}
	if blocksize < readSize || blocksize%readSize != 0 {
		return fail("blocksize must be a multiple of read_size")
	}
	if compressOffset >= readSize {
		return fail("compress_offset must be less than read_size")
	}
	if writeSize > readSize {
		return fail("write_size must not exceed read_size")
	}

	if nMTU, ok := s.get(NMTU); ok && nMTU != Unconstrained {
		if protoOverhead+appOverhead+writeSize > mtu {
			return fail("MTU too small for protocol and application overhead plus write_size")
		}
	}

	if fs, ok := s.get(Framesize); ok {
		if fs == 0 || fs%8 != 0 {
			return fail("framesize must be positive and a multiple of 8")
		}
		if fs%readSize != 0 {
			return fail("framesize must be a multiple of read_size")
		}
	}

	return nil
}

// ConstrainByBlocksize implements §4.2's no-fixed-frame-size algorithm.
func ConstrainByBlocksize(in Set, comp Compressor) (Set, error) {
	out := in.Clone()
	if comp == nil {
		comp = IdentityCompressor{}
	}

	blocksize := truncTo8(out[Blocksize])
	out[Blocksize] = blocksize
	compressOffset := out[CompressOffset]
	nMTU, _ := out.get(NMTU)

	if nMTU == Unconstrained {
		out[ReadSize] = blocksize
		out[WriteSize] = comp.CompressedSize(blocksize-compressOffset) + compressOffset
		return finalize(out)
	}

	mtu := out[MTU]
	protoOverhead := out[ProtocolOverhead]
	appOverhead := out[ApplicationOverhead]

	if mtu < protoOverhead+appOverhead {
		return nil, jvlbierrors.NewConstraintError("MTU too small for protocol and application overhead", out.dump())
	}

	writeSize := truncTo8(mtu - protoOverhead - appOverhead)
	for writeSize > 0 {
		if writeSize <= compressOffset {
			break
		}
		testRead := comp.UncompressedSize(writeSize-compressOffset) + compressOffset
		if testRead > 0 && testRead <= blocksize && testRead%8 == 0 {
			rem := blocksize - (blocksize % testRead)
			if rem != 0 && rem%8 == 0 {
				out[ReadSize] = testRead
				out[WriteSize] = writeSize
				return finalize(out)
			}
		}
		if writeSize < 8 {
			break
		}
		writeSize -= 8
	}
	return nil, jvlbierrors.NewConstraintError("no write_size candidate satisfies blocksize/MTU constraints", out.dump())
}

// ConstrainByFramesize implements §4.2's fixed-frame-size algorithm.
func ConstrainByFramesize(in Set, framesize uint64, comp Compressor) (Set, error) {
	out := in.Clone()
	if comp == nil {
		comp = IdentityCompressor{}
	}

	compressOffset := out[CompressOffset]
	if compressOffset%8 != 0 {
		return nil, jvlbierrors.NewConstraintError("compress_offset must be a multiple of 8", out.dump())
	}
	nMTU, _ := out.get(NMTU)
	if nMTU != 1 && nMTU != Unconstrained {
		return nil, jvlbierrors.NewConstraintError("n_mtu must be 1 or unconstrained", out.dump())
	}
	if framesize == 0 {
		return nil, jvlbierrors.NewConstraintError("framesize must be positive", out.dump())
	}
	out[Framesize] = framesize

	if nMTU == Unconstrained {
		blocksize := out[Blocksize]
		if blocksize >= framesize {
			blocksize = blocksize - (blocksize % framesize)
		} else {
			blocksize = largestDivisorAtMost(framesize, blocksize, compressOffset)
			if blocksize == 0 {
				return nil, jvlbierrors.NewConstraintError("no divisor of framesize satisfies blocksize bound", out.dump())
			}
		}
		out[Blocksize] = blocksize
		out[ReadSize] = framesize
		out[WriteSize] = comp.CompressedSize(framesize-compressOffset) + compressOffset
		return finalize(out)
	}

	mtu := out[MTU]
	protoOverhead := out[ProtocolOverhead]
	appOverhead := out[ApplicationOverhead]
	if mtu < protoOverhead+appOverhead {
		return nil, jvlbierrors.NewConstraintError("MTU too small for protocol and application overhead", out.dump())
	}
	budget := mtu - protoOverhead - appOverhead

	var chosenI uint64
	for i := uint64(1); i < framesize; i++ {
		if framesize%i != 0 {
			continue
		}
		testRead := framesize / i
		if testRead%8 != 0 {
			continue
		}
		if testRead < compressOffset {
			continue
		}
		testWrite := comp.CompressedSize(testRead-compressOffset) + compressOffset
		if testWrite <= budget {
			chosenI = i
			_ = testWrite
			break
		}
	}
	if chosenI == 0 {
		return nil, jvlbierrors.NewConstraintError("no packet-count divisor of framesize fits within one MTU", out.dump())
	}

	readSize := framesize / chosenI
	writeSize := comp.CompressedSize(readSize-compressOffset) + compressOffset
	out[ReadSize] = readSize
	out[WriteSize] = writeSize

	blocksize := out[Blocksize]
	if blocksize >= framesize {
		out[Blocksize] = blocksize - (blocksize % framesize)
	} else {
		out[Blocksize] = largestDivisorAtMost(framesize, blocksize, 0)
	}
	return finalize(out)
}

func largestDivisorAtMost(n, limit, lowerExclusive uint64) uint64 {
	if limit == 0 {
		return 0
	}
	var best uint64
	for d := limit; d > lowerExclusive; d-- {
		if n%d == 0 && d%8 == 0 {
			best = d
			break
		}
	}
	return best
}

func finalize(s Set) (Set, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Constrain is the public entry point: it dispatches to ConstrainByFramesize
// when Framesize is present in the input set, otherwise ConstrainByBlocksize.
// It is idempotent: Constrain(Constrain(in)) == Constrain(in).
func Constrain(in Set, comp Compressor) (Set, error) {
	if fs, ok := in.get(Framesize); ok && fs != 0 {
		return ConstrainByFramesize(in, fs, comp)
	}
	return ConstrainByBlocksize(in, comp)
}
