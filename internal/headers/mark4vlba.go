package headers

import (
	"fmt"

	"github.com/five82/jvlbi/internal/dot/hitime"
)

// mark4Syncword is the 32-bit-per-track Mark4/VLBA syncword pattern
// (0xFFFFFFFF), replicated across every parallel track.
const mark4Syncword uint32 = 0xFFFFFFFF

// tapeHeader implements FormatHeader for Mark4 and VLBA tape-format-on-disk
// frames: variable track count, headers parallel across tracks, time
// decoding corrected per Mark4 Memo 230 Table 2 (kept in hitime, not here,
// per the design note separating field extraction from time correction).
type tapeHeader struct {
	format          Format
	ntrack          int
	trackBitRate    int64
	framesPerSecond int64
}

// NewMark4Header builds the Mark4 codec for a given track count and rate.
func NewMark4Header(ntrack int, trackBitRate, framesPerSecond int64) FormatHeader {
	return &tapeHeader{format: Mark4, ntrack: ntrack, trackBitRate: trackBitRate, framesPerSecond: framesPerSecond}
}

// NewVLBAHeader builds the VLBA codec for a given track count and rate.
func NewVLBAHeader(ntrack int, trackBitRate, framesPerSecond int64) FormatHeader {
	return &tapeHeader{format: VLBA, ntrack: ntrack, trackBitRate: trackBitRate, framesPerSecond: framesPerSecond}
}

// headerWordsPerTrack is the number of 32-bit syncword+header words present
// per track before the timecode words begin.
const headerWordsPerTrack = 4

func (h *tapeHeader) trackBytes() int {
	return headerWordsPerTrack*4 + 4 // sync words + one BCD timecode word
}

func (h *tapeHeader) Check(window []byte) bool {
	need := h.ntrack * h.trackBytes()
	if len(window) < need || h.ntrack <= 0 {
		return false
	}
	stride := h.trackBytes()
	for track := 0; track < h.ntrack; track++ {
		base := track * stride
		for w := 0; w < headerWordsPerTrack; w++ {
			off := base + w*4
			v := uint32(window[off])<<24 | uint32(window[off+1])<<16 | uint32(window[off+2])<<8 | uint32(window[off+3])
			if v != mark4Syncword {
				return false
			}
		}
	}
	return true
}

// DecodeTime reads the BCD timecode word replicated on track 0 (per-track
// parallel redundancy is not cross-checked here) and applies the Mark4/VLBA
// sub-millisecond correction for this header's track bit rate tier.
func (h *tapeHeader) DecodeTime(window []byte) (hitime.Time, error) {
	if !h.Check(window) {
		return hitime.Time{}, fmt.Errorf("headers: %s syncword not found across %d tracks", h.format, h.ntrack)
	}
	timecodeOff := headerWordsPerTrack * 4
	bcd := uint32(window[timecodeOff])<<24 | uint32(window[timecodeOff+1])<<16 | uint32(window[timecodeOff+2])<<8 | uint32(window[timecodeOff+3])

	daySecondsBCD := bcd >> 12
	subMsBCD := bcd & 0xFFF

	seconds := int64(bcdToInt(daySecondsBCD))
	subMs := int64(bcdToInt(subMsBCD))

	tier := hitime.TierForBitRate(h.trackBitRate)
	correctedUs := hitime.CorrectMark4SubMillisecond(tier, subMs*1000)

	return hitime.New(seconds, correctedUs, 1_000_000), nil
}

func (h *tapeHeader) EncodeTime(window []byte, t hitime.Time) error {
	need := h.ntrack * h.trackBytes()
	if len(window) < need {
		return fmt.Errorf("headers: window too small for %s header", h.format)
	}
	stride := h.trackBytes()
	for track := 0; track < h.ntrack; track++ {
		base := track * stride
		for w := 0; w < headerWordsPerTrack; w++ {
			off := base + w*4
			window[off] = byte(mark4Syncword >> 24 & 0xFF)
			window[off+1] = byte(mark4Syncword >> 16 & 0xFF)
			window[off+2] = byte(mark4Syncword >> 8 & 0xFF)
			window[off+3] = byte(mark4Syncword & 0xFF)
		}
	}

	num := t.Fraction.Num().Int64()
	den := t.Fraction.Denom().Int64()
	var subUs int64
	if den != 0 {
		subUs = num * 1_000_000 / den
	}
	subMs := subUs / 1000

	bcd := (intToBCD(uint32(t.Seconds)) << 12) | (intToBCD(uint32(subMs)) & 0xFFF)
	timecodeOff := headerWordsPerTrack * 4
	window[timecodeOff] = byte(bcd >> 24)
	window[timecodeOff+1] = byte(bcd >> 16)
	window[timecodeOff+2] = byte(bcd >> 8)
	window[timecodeOff+3] = byte(bcd)
	return nil
}
