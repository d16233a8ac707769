package recwriter

import "fmt"

// NamingScheme derives the on-disk chunk name for one outgoing write, given
// the recording name, an optional per-datastream suffix, and a monotonic
// sequence number for that (recording, suffix) pair.
type NamingScheme interface {
	// ChunkName returns the path, relative to a mountpoint, at which this
	// chunk should be written.
	ChunkName(scan string, dsSuffix string, seq uint64) string
}

// vbsNaming implements the VBS on-disk layout: <scan>/<scan>.NNNNNNNN, with
// an optional "_ds<suffix>" segment appended to the recording name when the
// runtime has a datastream mapping (§4.6).
type vbsNaming struct{}

// VBS is the NamingScheme for the per-mountpoint-files layout.
var VBS NamingScheme = vbsNaming{}

func (vbsNaming) ChunkName(scan string, dsSuffix string, seq uint64) string {
	name := scan
	if dsSuffix != "" {
		name = fmt.Sprintf("%s_ds%s", scan, dsSuffix)
	}
	return fmt.Sprintf("%s/%s.%08d", name, name, seq)
}

// mark6Naming implements the Mark6 layout: every chunk for a recording is
// appended to a single per-mountpoint file named after the recording (plus
// datastream suffix); block numbers inside that file are not required to be
// consecutive.
type mark6Naming struct{}

// Mark6 is the NamingScheme for the single-file-per-mountpoint layout.
var Mark6 NamingScheme = mark6Naming{}

func (mark6Naming) ChunkName(scan string, dsSuffix string, seq uint64) string {
	if dsSuffix != "" {
		return fmt.Sprintf("%s_ds%s", scan, dsSuffix)
	}
	return scan
}
