// Package headers implements the timestamped frame-format engine:
// syncword-indexed detection plus time-code decode/encode for Mark4, VLBA,
// Mark5B, and VDIF.
package headers

import (
	"fmt"

	"github.com/five82/jvlbi/internal/dot/hitime"
)

// Format identifies a supported frame format.
type Format int

const (
	Mark4 Format = iota
	VLBA
	Mark5B
	VDIFLegacy
	VDIFNormal
)

func (f Format) String() string {
	switch f {
	case Mark4:
		return "Mark4"
	case VLBA:
		return "VLBA"
	case Mark5B:
		return "Mark5B"
	case VDIFLegacy:
		return "VDIF-legacy"
	case VDIFNormal:
		return "VDIF-normal"
	default:
		return "unknown"
	}
}

// Descriptor is the frame header descriptor tuple of §3: format, track
// count, track bit rate, syncword location, header/frame/payload sizing,
// and the format's time codec. Constructed only via NewDescriptor so the
// headersize+payloadsize==framesize and payloadoffset>=headersize
// invariants always hold.
type Descriptor struct {
	Format         Format
	NTrack         int
	TrackBitRate   int64
	SyncwordOffset int
	SyncwordSize   int
	HeaderSize     int
	FrameSize      int
	PayloadSize    int
	PayloadOffset  int
	Codec          FormatHeader
}

// NewDescriptor validates and constructs a Descriptor.
func NewDescriptor(format Format, ntrack int, trackBitRate int64, syncOffset, syncSize, headerSize, frameSize, payloadOffset int, codec FormatHeader) (*Descriptor, error) {
	payloadSize := frameSize - headerSize
	if headerSize+payloadSize != frameSize {
		return nil, fmt.Errorf("headers: headersize+payloadsize must equal framesize")
	}
	if payloadOffset < headerSize {
		return nil, fmt.Errorf("headers: payloadoffset must be >= headersize")
	}
	return &Descriptor{
		Format:         format,
		NTrack:         ntrack,
		TrackBitRate:   trackBitRate,
		SyncwordOffset: syncOffset,
		SyncwordSize:   syncSize,
		HeaderSize:     headerSize,
		FrameSize:      frameSize,
		PayloadSize:    payloadSize,
		PayloadOffset:  payloadOffset,
		Codec:          codec,
	}, nil
}

// FormatHeader is the small format-specific interface selected by the
// caller at descriptor-construction time; one implementation per Format.
type FormatHeader interface {
	Check(window []byte) bool
	DecodeTime(window []byte) (hitime.Time, error)
	EncodeTime(window []byte, t hitime.Time) error
}

// DivideInt logically partitions an N-track frame into k sub-frames of
// N/k tracks each. Header-related fields are zeroed since the resulting
// chunks are headerless.
func (d Descriptor) DivideInt(k int) (Descriptor, error) {
	if k <= 0 || d.NTrack%k != 0 {
		return Descriptor{}, fmt.Errorf("headers: %d does not evenly divide %d tracks", k, d.NTrack)
	}
	out := d
	out.NTrack = d.NTrack / k
	out.HeaderSize = 0
	out.SyncwordOffset = 0
	out.SyncwordSize = 0
	out.FrameSize = d.FrameSize / k
	out.PayloadSize = out.FrameSize
	out.PayloadOffset = 0
	out.Codec = nil
	return out, nil
}

// DivideComplex extracts b tracks out of every a chunks; same header
// zeroing as DivideInt.
func (d Descriptor) DivideComplex(a, b int) (Descriptor, error) {
	if a <= 0 || b <= 0 || b > a {
		return Descriptor{}, fmt.Errorf("headers: invalid complex division %d/%d", b, a)
	}
	out := d
	out.NTrack = d.NTrack * b / a
	out.HeaderSize = 0
	out.SyncwordOffset = 0
	out.SyncwordSize = 0
	out.FrameSize = d.FrameSize * b / a
	out.PayloadSize = out.FrameSize
	out.PayloadOffset = 0
	out.Codec = nil
	return out, nil
}

// Multiply accumulates k frames into one logical payload; format identity
// is preserved (header fields are not zeroed).
func (d Descriptor) Multiply(k int) Descriptor {
	out := d
	out.FrameSize = d.FrameSize * k
	out.PayloadSize = d.PayloadSize*k + d.HeaderSize*(k-1)
	return out
}
