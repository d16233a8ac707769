// Package userdir implements the on-disk scan directory: the record of
// scans a disk pack or mountpoint set holds, its record/play pointers, and
// the handful of binary layouts different vendor SDK generations used to
// serialize it (§4.7).
package userdir

import "fmt"

// ScanEntry is one recorded scan: its name, starting byte offset within the
// recording, and length in bytes.
type ScanEntry struct {
	Name   string
	Start  uint64
	Length uint64
}

// Directory is the layout-independent, in-memory scan table plus its
// record/play pointers and optional VSN labels.
type Directory struct {
	Scans          []ScanEntry
	RecordPointer  uint64
	PlayPointer    uint64
	PlayRate       float64
	VSN            string // primary volume serial name, if the layout carries one
	CompanionVSN   string // companion-drive VSN, if the layout carries one
}

// NextScan appends a new, empty scan and returns its index.
func (d *Directory) NextScan() int {
	d.Scans = append(d.Scans, ScanEntry{})
	return len(d.Scans) - 1
}

// SetScan overwrites the scan at index.
func (d *Directory) SetScan(index int, s ScanEntry) error {
	if index < 0 || index >= len(d.Scans) {
		return fmt.Errorf("userdir: scan index %d out of range (have %d scans)", index, len(d.Scans))
	}
	d.Scans[index] = s
	return nil
}

// RemoveLastScan drops the most recently added scan and, if any scans
// remain, clamps the record/play pointers to the new last scan's end —
// mirroring the original implementation's remove_last_scan behavior.
func (d *Directory) RemoveLastScan() error {
	if len(d.Scans) == 0 {
		return fmt.Errorf("userdir: no scan to remove")
	}
	d.Scans = d.Scans[:len(d.Scans)-1]
	if len(d.Scans) > 0 {
		last := d.Scans[len(d.Scans)-1]
		end := last.Start + last.Length
		if d.RecordPointer > end {
			d.RecordPointer = end
		}
		if d.PlayPointer > end {
			d.PlayPointer = end
		}
	} else {
		d.RecordPointer = 0
		d.PlayPointer = 0
	}
	return nil
}

// Recover reconstructs directory state after an unclean shutdown: it sets
// the record pointer to recoveredPointer and extends the last scan to reach
// it (a last scan that already reaches it is left unchanged), or, if there
// is no scan, synthesizes a single "recovered scan" covering
// [0, recoveredPointer).
func (d *Directory) Recover(recoveredPointer uint64) {
	d.RecordPointer = recoveredPointer
	if n := len(d.Scans); n > 0 {
		last := &d.Scans[n-1]
		if last.Start+last.Length < recoveredPointer {
			last.Length = recoveredPointer - last.Start
			return
		}
		return
	}
	d.Scans = append(d.Scans, ScanEntry{
		Name:   "recovered scan",
		Start:  0,
		Length: recoveredPointer,
	})
}

// Sanitize clears the directory entirely if it is internally inconsistent
// in a way that cannot be locally repaired (mirrors the original
// ScanDir::sanitize's "detected fishiness -> zero everything" escape
// hatch).
func (d *Directory) Sanitize() {
	if d.RecordPointer == 0 && d.PlayPointer == 0 && len(d.Scans) == 0 {
		return
	}
	for i, s := range d.Scans {
		if i > 0 && s.Start < d.Scans[i-1].Start {
			*d = Directory{}
			return
		}
	}
}
