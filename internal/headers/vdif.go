package headers

import (
	"encoding/binary"
	"fmt"

	"github.com/five82/jvlbi/internal/dot/hitime"
)

// vdifEpoch is the VDIF reference epoch: 2000-01-01T00:00:00Z, counted in
// 6-month half-year units per word0's epoch field.
const vdifHalfYearSeconds = 15778800 // 182.625 days, nominal VDIF half-year

// vdifHeader implements FormatHeader for VDIF legacy (16-byte) and normal
// (32-byte) headers.
type vdifHeader struct {
	legacy          bool
	framesPerSecond int64
}

// NewVDIFHeader builds the VDIF codec. legacy selects the 16-byte header
// variant; framesPerSecond is the nominal data_frame_num rollover rate.
func NewVDIFHeader(legacy bool, framesPerSecond int64) FormatHeader {
	return &vdifHeader{legacy: legacy, framesPerSecond: framesPerSecond}
}

func (h *vdifHeader) headerSize() int {
	if h.legacy {
		return 16
	}
	return 32
}

// VDIF has no syncword; frame validity is inferred from the invalid-data
// flag (word0 bit 31) being clear and the legacy-mode flag (word0 bit 30)
// matching this codec's configuration.
func (h *vdifHeader) Check(window []byte) bool {
	if len(window) < h.headerSize() {
		return false
	}
	word0 := binary.LittleEndian.Uint32(window[0:4])
	invalid := word0>>31&1 == 1
	legacyFlag := word0>>30&1 == 1
	return !invalid && legacyFlag == h.legacy
}

func (h *vdifHeader) DecodeTime(window []byte) (hitime.Time, error) {
	if !h.Check(window) {
		return hitime.Time{}, fmt.Errorf("headers: vdif header check failed")
	}
	word0 := binary.LittleEndian.Uint32(window[0:4])
	word1 := binary.LittleEndian.Uint32(window[4:8])

	epochSeconds := int64(word0 & 0x3FFFFFFF)
	epoch := int64(word1>>24) & 0x3F
	frameNum := int64(word1 & 0xFFFFFF)

	seconds := epoch*vdifHalfYearSeconds + epochSeconds
	if h.framesPerSecond <= 0 {
		return hitime.New(seconds, 0, 1), nil
	}
	return hitime.New(seconds, frameNum, h.framesPerSecond), nil
}

func (h *vdifHeader) EncodeTime(window []byte, t hitime.Time) error {
	if len(window) < h.headerSize() {
		return fmt.Errorf("headers: window too small for vdif header")
	}
	epoch := t.Seconds / vdifHalfYearSeconds
	epochSeconds := t.Seconds % vdifHalfYearSeconds

	var frameNum int64
	if h.framesPerSecond > 0 {
		num := t.Fraction.Num().Int64()
		den := t.Fraction.Denom().Int64()
		if den != 0 {
			frameNum = num * h.framesPerSecond / den
		}
	}

	legacyBit := uint32(0)
	if h.legacy {
		legacyBit = 1 << 30
	}
	word0 := uint32(epochSeconds)&0x3FFFFFFF | legacyBit
	word1 := uint32(frameNum)&0xFFFFFF | (uint32(epoch)&0x3F)<<24

	binary.LittleEndian.PutUint32(window[0:4], word0)
	binary.LittleEndian.PutUint32(window[4:8], word1)
	return nil
}

// DataFrameLength8 returns data_frame_len8 (total frame length in 8-byte
// units) as encoded in word2 bits [23:0] of a normal/legacy VDIF header.
func DataFrameLength8(window []byte) uint32 {
	word2 := binary.LittleEndian.Uint32(window[8:12])
	return word2 & 0xFFFFFF
}

// SetDataFrameLength8 writes the total frame length (8-byte units) into
// word2 bits [23:0], preserving the existing station-id/thread-id bits of
// word3 and any reserved bits of word2 above the length field.
func SetDataFrameLength8(window []byte, length8 uint32) {
	word2 := binary.LittleEndian.Uint32(window[8:12])
	word2 = (word2 &^ 0xFFFFFF) | (length8 & 0xFFFFFF)
	binary.LittleEndian.PutUint32(window[8:12], word2)
}

// StationThread returns the VDIF station id and thread id from word3.
func StationThread(window []byte) (stationID uint16, threadID uint16) {
	word3 := binary.LittleEndian.Uint32(window[12:16])
	threadID = uint16(word3>>16) & 0x3FF
	stationID = uint16(word3) & 0xFFFF
	return stationID, threadID
}
