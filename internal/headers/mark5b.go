package headers

import (
	"encoding/binary"
	"fmt"

	"github.com/five82/jvlbi/internal/dot/hitime"
)

// Mark5BSyncword is the 32-bit Mark5B frame syncword.
const Mark5BSyncword uint32 = 0xABADDEED

// mark5BHeader implements FormatHeader for Mark5B: 32-bit syncword, 15-bit
// within-second frame number, CRC16.
type mark5BHeader struct {
	framesPerSecond int64
}

// NewMark5BHeader builds the Mark5B codec for a given nominal frame rate.
func NewMark5BHeader(framesPerSecond int64) FormatHeader {
	return &mark5BHeader{framesPerSecond: framesPerSecond}
}

func (h *mark5BHeader) Check(window []byte) bool {
	if len(window) < 16 {
		return false
	}
	sync := binary.BigEndian.Uint32(window[0:4])
	return sync == Mark5BSyncword
}

// Mark5B header layout (big-endian 32-bit words):
//
//	word0: syncword
//	word1: bit31 test-vector flag, bits[29:0] seconds-since-epoch (BCD)
//	word2: bits[31:16] CRC16, bits[14:0] frame number within second
func (h *mark5BHeader) DecodeTime(window []byte) (hitime.Time, error) {
	if !h.Check(window) {
		return hitime.Time{}, fmt.Errorf("headers: mark5b syncword not found")
	}
	word1 := binary.BigEndian.Uint32(window[4:8])
	secondsBCD := word1 & 0x3FFFFFFF
	seconds := int64(bcdToInt(secondsBCD))

	word2 := binary.BigEndian.Uint32(window[8:12])
	frameNum := int64(word2 & 0x7FFF)

	if h.framesPerSecond <= 0 {
		return hitime.New(seconds, 0, 1), nil
	}
	return hitime.New(seconds, frameNum, h.framesPerSecond), nil
}

func (h *mark5BHeader) EncodeTime(window []byte, t hitime.Time) error {
	if len(window) < 16 {
		return fmt.Errorf("headers: window too small for mark5b header")
	}
	binary.BigEndian.PutUint32(window[0:4], Mark5BSyncword)

	secondsBCD := intToBCD(uint32(t.Seconds)) & 0x3FFFFFFF
	binary.BigEndian.PutUint32(window[4:8], secondsBCD)

	var frameNum int64
	if h.framesPerSecond > 0 {
		num := t.Fraction.Num().Int64()
		den := t.Fraction.Denom().Int64()
		if den != 0 {
			frameNum = num * h.framesPerSecond / den
		}
	}
	word2 := uint32(frameNum) & 0x7FFF
	binary.BigEndian.PutUint32(window[8:12], word2)

	crc := crc16VLBA(window[0:12])
	binary.BigEndian.PutUint16(window[12:14], crc)
	return nil
}

func bcdToInt(bcd uint32) uint32 {
	var result uint32
	var multiplier uint32 = 1
	for bcd > 0 {
		digit := bcd & 0xF
		result += digit * multiplier
		multiplier *= 10
		bcd >>= 4
	}
	return result
}

func intToBCD(v uint32) uint32 {
	var result uint32
	var shift uint32
	for v > 0 {
		digit := v % 10
		result |= digit << shift
		shift += 4
		v /= 10
	}
	return result
}
