// Package recwriter stripes incoming blocks across a set of mountpoints,
// using either the VBS (per-mountpoint-files) or Mark6 (single-file,
// framed-records) on-disk layout.
package recwriter

import (
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"

	"github.com/five82/jvlbi/internal/block"
)

// DatastreamSuffixer resolves a block's datastream tag to a naming suffix
// and its own monotonic sequence counter key; satisfied by
// internal/dot.DatastreamMap.
type DatastreamSuffixer interface {
	SuffixFor(tag int) (suffix string, ok bool)
}

// Writer stripes block.TaggedBlocks across mountpoints, naming and framing
// each chunk according to scheme.
type Writer struct {
	Scan        string
	Mountpoints []string
	Scheme      NamingScheme
	Suffixer    DatastreamSuffixer

	Mark6BlockSize    uint32
	Mark6PacketFormat uint32
	Mark6PacketSize   uint32

	mu       sync.Mutex
	seqByTag map[string]uint64

	mark6Mu    sync.Mutex
	mark6Files map[string]*mark6FileState
}

type mark6FileState struct {
	f      *os.File
	offset int64
}

// NewWriter constructs a Writer over the given mountpoints using scheme.
func NewWriter(scan string, mountpoints []string, scheme NamingScheme) *Writer {
	return &Writer{
		Scan:        scan,
		Mountpoints: mountpoints,
		Scheme:      scheme,
		seqByTag:    make(map[string]uint64),
		mark6Files:  make(map[string]*mark6FileState),
	}
}

// mountpointFor deterministically assigns a (streamID, seq) pair to one of
// w.Mountpoints via hash(streamID, seq) % len(mountpoints), satisfying
// §4.6's "must be deterministic from (mountpoint list, stream id, sequence
// number)" requirement.
func mountpointFor(mountpoints []string, streamID string, seq uint64) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(streamID))
	_, _ = h.Write([]byte{
		byte(seq), byte(seq >> 8), byte(seq >> 16), byte(seq >> 24),
		byte(seq >> 32), byte(seq >> 40), byte(seq >> 48), byte(seq >> 56),
	})
	return int(h.Sum64() % uint64(len(mountpoints)))
}

// nextSeq returns and increments the sequence counter for the given
// datastream suffix (empty string for the undifferentiated stream).
func (w *Writer) nextSeq(suffix string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	seq := w.seqByTag[suffix]
	w.seqByTag[suffix] = seq + 1
	return seq
}

// Write stripes one block to its assigned mountpoint, writing it under the
// scan/datastream's next sequence number.
func (w *Writer) Write(tb block.TaggedBlock) error {
	if len(w.Mountpoints) == 0 {
		return jvlbierrors.NewResourceError("recwriter: no mountpoints configured")
	}

	suffix := ""
	if w.Suffixer != nil {
		if s, ok := w.Suffixer.SuffixFor(tb.Tag); ok {
			suffix = s
		}
	}

	streamID := w.Scan + "_ds" + suffix
	if suffix == "" {
		streamID = w.Scan
	}

	seq := w.nextSeq(suffix)
	idx := mountpointFor(w.Mountpoints, streamID, seq)
	mountpoint := w.Mountpoints[idx]

	switch w.Scheme.(type) {
	case mark6Naming:
		return w.writeMark6(mountpoint, suffix, tb, seq)
	default:
		return w.writeVBS(mountpoint, suffix, tb, seq)
	}
}

func (w *Writer) writeVBS(mountpoint, suffix string, tb block.TaggedBlock, seq uint64) error {
	rel := w.Scheme.ChunkName(w.Scan, suffix, seq)
	full := filepath.Join(mountpoint, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return jvlbierrors.NewIOError("recwriter: failed to create chunk directory", err)
	}
	if err := os.WriteFile(full, tb.Block.Bytes(), 0o644); err != nil {
		return jvlbierrors.NewIOError("recwriter: failed to write vbs chunk", err)
	}
	return nil
}

func (w *Writer) writeMark6(mountpoint, suffix string, tb block.TaggedBlock, seq uint64) error {
	rel := w.Scheme.ChunkName(w.Scan, suffix, seq)
	full := filepath.Join(mountpoint, rel)

	key := mountpoint + "/" + rel
	w.mark6Mu.Lock()
	state, ok := w.mark6Files[key]
	if !ok {
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			w.mark6Mu.Unlock()
			return jvlbierrors.NewIOError("recwriter: failed to create mark6 directory", err)
		}
		f, err := os.OpenFile(full, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			w.mark6Mu.Unlock()
			return jvlbierrors.NewIOError("recwriter: failed to open mark6 file", err)
		}
		state = &mark6FileState{f: f, offset: 0}
		w.mark6Files[key] = state
	}
	w.mark6Mu.Unlock()

	header := Mark6Header{
		Sync:         Mark6Sync,
		Version:      Mark6Version,
		BlockSize:    w.Mark6BlockSize,
		PacketFormat: w.Mark6PacketFormat,
		PacketSize:   w.Mark6PacketSize,
	}

	w.mark6Mu.Lock()
	defer w.mark6Mu.Unlock()
	newOffset, err := writeMark6Block(state.f, state.offset, header, seq, tb.Block.Bytes())
	if err != nil {
		return err
	}
	state.offset = newOffset
	return nil
}

// Close releases all open Mark6 file descriptors.
func (w *Writer) Close() error {
	w.mark6Mu.Lock()
	defer w.mark6Mu.Unlock()
	var firstErr error
	for _, state := range w.mark6Files {
		if err := state.f.Close(); err != nil && firstErr == nil {
			firstErr = jvlbierrors.NewIOError("recwriter: failed to close mark6 file", err)
		}
	}
	return firstErr
}
