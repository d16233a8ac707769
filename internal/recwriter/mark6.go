package recwriter

import (
	"encoding/binary"
	"os"

	"golang.org/x/sys/unix"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// Mark6Sync is the magic word at the start of every Mark6 file.
const Mark6Sync uint32 = 0xfeed6666

// Mark6Version is the only version this engine writes.
const Mark6Version uint32 = 2

// Mark6Header is the five-little-endian-word file header every Mark6 file
// opens with (§6).
type Mark6Header struct {
	Sync         uint32
	Version      uint32
	BlockSize    uint32
	PacketFormat uint32
	PacketSize   uint32
}

const mark6HeaderSize = 5 * 4

func (h Mark6Header) encode() []byte {
	buf := make([]byte, mark6HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Sync)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.BlockSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.PacketFormat)
	binary.LittleEndian.PutUint32(buf[16:20], h.PacketSize)
	return buf
}

func decodeMark6Header(buf []byte) (Mark6Header, error) {
	if len(buf) < mark6HeaderSize {
		return Mark6Header{}, jvlbierrors.NewIOError("recwriter: short mark6 header read", nil)
	}
	h := Mark6Header{
		Sync:         binary.LittleEndian.Uint32(buf[0:4]),
		Version:      binary.LittleEndian.Uint32(buf[4:8]),
		BlockSize:    binary.LittleEndian.Uint32(buf[8:12]),
		PacketFormat: binary.LittleEndian.Uint32(buf[12:16]),
		PacketSize:   binary.LittleEndian.Uint32(buf[16:20]),
	}
	if h.Sync != Mark6Sync {
		return h, jvlbierrors.NewIOError("recwriter: bad mark6 sync word", nil)
	}
	return h, nil
}

// mark6Record is one (blocknum, size, payload) record appended to a Mark6
// file.
type mark6Record struct {
	BlockNum uint64
	Size     uint32
}

const mark6RecordHeaderSize = 8 + 4

func (r mark6Record) encode() []byte {
	buf := make([]byte, mark6RecordHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], r.BlockNum)
	binary.LittleEndian.PutUint32(buf[8:12], r.Size)
	return buf
}

// writeMark6Block appends one (blocknum, size, payload) record to f at the
// given file offset, writing the file header first if offset is zero. It
// returns the offset immediately past the written record, for the caller's
// next write.
func writeMark6Block(f *os.File, offset int64, header Mark6Header, blocknum uint64, payload []byte) (int64, error) {
	pos := offset
	if pos == 0 {
		hdr := header.encode()
		if _, err := unix.Pwrite(int(f.Fd()), hdr, 0); err != nil {
			return 0, jvlbierrors.NewIOError("recwriter: failed to write mark6 header", err)
		}
		pos = int64(len(hdr))
	}

	rec := mark6Record{BlockNum: blocknum, Size: uint32(len(payload))}
	recHdr := rec.encode()
	if _, err := unix.Pwrite(int(f.Fd()), recHdr, pos); err != nil {
		return 0, jvlbierrors.NewIOError("recwriter: failed to write mark6 record header", err)
	}
	pos += int64(len(recHdr))

	if _, err := unix.Pwrite(int(f.Fd()), payload, pos); err != nil {
		return 0, jvlbierrors.NewIOError("recwriter: failed to write mark6 payload", err)
	}
	pos += int64(len(payload))

	return pos, nil
}
