package userdir

import (
	"encoding/binary"
	"math"
)

// enhancedLayout is the self-describing entry-table on-disk form: a fixed
// header carrying the pointers, followed by a variable number of
// fixed-size per-scan entries (scan number, data type, start/stop byte,
// name) whose count is derived from the total byte length rather than
// stored explicitly.
type enhancedLayout struct {
	name         string
	maxScans     int
	maxNameLen   int
	validDataMin uint32
	validDataMax uint32
}

const enhancedHeaderSize = 8 + 8 + 8 // recordPointer, playPointer, playRate

func (e enhancedLayout) entrySize() int {
	return 4 + 4 + 8 + 8 + e.maxNameLen
}

func (e enhancedLayout) Name() string { return e.name }

func (e enhancedLayout) Size() int {
	return enhancedHeaderSize + e.maxScans*e.entrySize()
}

func (e enhancedLayout) Parse(data []byte) (*Directory, int, error) {
	if len(data) < enhancedHeaderSize {
		return nil, 0, &ErrSizeMismatch{Layout: e.name, Got: len(data), Expected: enhancedHeaderSize}
	}
	remainder := len(data) - enhancedHeaderSize
	entrySize := e.entrySize()
	if remainder%entrySize != 0 {
		return nil, 0, &ErrSizeMismatch{Layout: e.name, Got: len(data), Expected: enhancedHeaderSize + entrySize}
	}
	n := remainder / entrySize
	if n > e.maxScans {
		return nil, 0, &ErrSizeMismatch{Layout: e.name, Got: len(data), Expected: e.Size()}
	}

	recordPointer := binary.LittleEndian.Uint64(data[0:8])
	playPointer := binary.LittleEndian.Uint64(data[8:16])
	playRate := math.Float64frombits(binary.LittleEndian.Uint64(data[16:24]))

	dir := &Directory{RecordPointer: recordPointer, PlayPointer: playPointer, PlayRate: playRate}
	insanity := 0

	base := enhancedHeaderSize
	for i := 0; i < n; i++ {
		off := base + i*entrySize
		scanNumber := binary.LittleEndian.Uint32(data[off : off+4])
		dataType := binary.LittleEndian.Uint32(data[off+4 : off+8])
		startByte := binary.LittleEndian.Uint64(data[off+8 : off+16])
		stopByte := binary.LittleEndian.Uint64(data[off+16 : off+24])
		name := cstring(data[off+24 : off+entrySize])

		if scanNumber != uint32(i+1) {
			insanity++
		}
		if dataType < e.validDataMin || dataType > e.validDataMax {
			insanity++
		}
		if startByte > stopByte {
			insanity++
			stopByte = startByte
		}

		dir.Scans = append(dir.Scans, ScanEntry{Name: name, Start: startByte, Length: stopByte - startByte})
	}

	return dir, insanity, nil
}

func (e enhancedLayout) Serialize(dir *Directory) []byte {
	n := len(dir.Scans)
	if n > e.maxScans {
		n = e.maxScans
	}
	entrySize := e.entrySize()
	buf := make([]byte, enhancedHeaderSize+n*entrySize)

	binary.LittleEndian.PutUint64(buf[0:8], dir.RecordPointer)
	binary.LittleEndian.PutUint64(buf[8:16], dir.PlayPointer)
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(dir.PlayRate))

	base := enhancedHeaderSize
	for i := 0; i < n; i++ {
		off := base + i*entrySize
		s := dir.Scans[i]
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(i+1))
		dataType := e.validDataMin
		if dataType == 0 {
			dataType = 1
		}
		binary.LittleEndian.PutUint32(buf[off+4:off+8], dataType)
		binary.LittleEndian.PutUint64(buf[off+8:off+16], s.Start)
		binary.LittleEndian.PutUint64(buf[off+16:off+24], s.Start+s.Length)
		copy(buf[off+24:off+entrySize], s.Name)
	}

	return buf
}
