package userdir

import (
	"encoding/binary"
	"math"
)

// legacyLayout is the struct-of-arrays on-disk form: a fixed-size scan count
// and pointer header, followed by parallel tables of scan names, start
// bytes, and lengths, each sized for maxScans entries. This mirrors the
// original ScanDir layout (one array per field, not one struct per scan).
type legacyLayout struct {
	name       string
	maxScans   int
	maxNameLen int
	vsnBytes   int // 0 = no VSN trailer, 8 = single VSN (VSNVersionOne), 32 = primary+companion (VSNVersionTwo)
}

const legacyHeaderSize = 4 + 4 + 8 + 8 + 8 // nRecordedScans, nextScan, recordPointer, playPointer, playRate

func (l legacyLayout) Name() string { return l.name }

func (l legacyLayout) Size() int {
	tableSize := l.maxScans*l.maxNameLen + l.maxScans*8 + l.maxScans*8
	return legacyHeaderSize + tableSize + l.vsnBytes
}

func (l legacyLayout) Parse(data []byte) (*Directory, int, error) {
	want := l.Size()
	if len(data) != want {
		return nil, 0, &ErrSizeMismatch{Layout: l.name, Got: len(data), Expected: want}
	}

	nRecorded := int32(binary.LittleEndian.Uint32(data[0:4]))
	recordPointer := binary.LittleEndian.Uint64(data[8:16])
	playPointer := binary.LittleEndian.Uint64(data[16:24])
	playRate := math.Float64frombits(binary.LittleEndian.Uint64(data[24:32]))

	insanity := 0
	if nRecorded < 0 || int(nRecorded) > l.maxScans {
		insanity++
		if nRecorded < 0 {
			nRecorded = 0
		} else {
			nRecorded = int32(l.maxScans)
		}
	}

	namesStart := legacyHeaderSize
	startsStart := namesStart + l.maxScans*l.maxNameLen
	lengthsStart := startsStart + l.maxScans*8

	dir := &Directory{RecordPointer: recordPointer, PlayPointer: playPointer, PlayRate: playRate}
	var prevStart uint64
	for i := 0; i < int(nRecorded); i++ {
		nameBytes := data[namesStart+i*l.maxNameLen : namesStart+(i+1)*l.maxNameLen]
		name := cstring(nameBytes)
		start := binary.LittleEndian.Uint64(data[startsStart+i*8 : startsStart+(i+1)*8])
		length := binary.LittleEndian.Uint64(data[lengthsStart+i*8 : lengthsStart+(i+1)*8])

		if i > 0 && start < prevStart {
			insanity++
		}
		prevStart = start

		dir.Scans = append(dir.Scans, ScanEntry{Name: name, Start: start, Length: length})
	}

	if l.vsnBytes > 0 {
		vsnStart := lengthsStart + l.maxScans*8
		primaryWidth := l.vsnBytes
		if l.vsnBytes > 8 {
			primaryWidth = 16
		}
		dir.VSN = cstring(data[vsnStart : vsnStart+primaryWidth])
		if l.vsnBytes > 8 {
			dir.CompanionVSN = cstring(data[vsnStart+16 : vsnStart+32])
		}
	}

	return dir, insanity, nil
}

func (l legacyLayout) Serialize(dir *Directory) []byte {
	buf := make([]byte, l.Size())

	n := len(dir.Scans)
	if n > l.maxScans {
		n = l.maxScans
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(n))
	binary.LittleEndian.PutUint64(buf[8:16], dir.RecordPointer)
	binary.LittleEndian.PutUint64(buf[16:24], dir.PlayPointer)
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(dir.PlayRate))

	namesStart := legacyHeaderSize
	startsStart := namesStart + l.maxScans*l.maxNameLen
	lengthsStart := startsStart + l.maxScans*8

	for i := 0; i < n; i++ {
		nameBytes := buf[namesStart+i*l.maxNameLen : namesStart+(i+1)*l.maxNameLen]
		copy(nameBytes, dir.Scans[i].Name)
		binary.LittleEndian.PutUint64(buf[startsStart+i*8:startsStart+(i+1)*8], dir.Scans[i].Start)
		binary.LittleEndian.PutUint64(buf[lengthsStart+i*8:lengthsStart+(i+1)*8], dir.Scans[i].Length)
	}

	if l.vsnBytes > 0 {
		vsnStart := lengthsStart + l.maxScans*8
		primaryWidth := l.vsnBytes
		if l.vsnBytes > 8 {
			primaryWidth = 16
		}
		copy(buf[vsnStart:vsnStart+primaryWidth], dir.VSN)
		if l.vsnBytes > 8 {
			copy(buf[vsnStart+16:vsnStart+32], dir.CompanionVSN)
		}
	}

	return buf
}

// cstring reads a NUL-terminated (or fully-populated) fixed-width byte
// field as a string, stopping at the first zero byte.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
