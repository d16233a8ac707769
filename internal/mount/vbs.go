package mount

import (
	"context"
	"math"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// Handle identifies an open VBS recording. Allocated by decrementing from
// math.MaxInt32 so it never collides with a real OS file descriptor.
type Handle int32

type vbsFile struct {
	mu          sync.Mutex
	totalSize   int64
	chunks      []Chunk
	pointer     int64
	currentIdx  int
	currentFD   *os.File
}

var (
	registryMu  sync.RWMutex
	registry    = make(map[Handle]*vbsFile)
	nextHandle  int32 = math.MaxInt32
)

// Open scans roots for scan's chunks and returns a fresh handle over the
// concatenated byte stream. Fails with KindNoSuchRecording if no chunks are
// found.
func Open(ctx context.Context, scan string, roots []string) (Handle, error) {
	chunks, err := DiscoverChunks(ctx, scan, roots)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, c := range chunks {
		total += c.Size
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	h := Handle(nextHandle)
	nextHandle--

	registry[h] = &vbsFile{
		totalSize: total,
		chunks:    chunks,
	}
	return h, nil
}

func (f *vbsFile) chunkForPointer(pos int64) (int, bool) {
	for i, c := range f.chunks {
		if pos >= c.Offset && pos < c.Offset+c.Size {
			return i, true
		}
	}
	if pos == f.totalSize && len(f.chunks) > 0 {
		return len(f.chunks) - 1, true
	}
	return 0, false
}

func (f *vbsFile) ensureOpen(idx int) error {
	if f.currentFD != nil && f.currentIdx == idx {
		return nil
	}
	if f.currentFD != nil {
		_ = f.currentFD.Close()
		f.currentFD = nil
	}
	fd, err := os.Open(f.chunks[idx].Path)
	if err != nil {
		return jvlbierrors.NewIOError("mount: failed to open chunk", err)
	}
	f.currentFD = fd
	f.currentIdx = idx
	return nil
}

// Read repeatedly determines the current chunk and its bounds, performs a
// positioned pread, advances the pointer, and falls through to the next
// chunk on exhaustion. Returns the total bytes read, which may be less than
// len(buf) at end-of-recording.
func Read(h Handle, buf []byte) (int, error) {
	registryMu.RLock()
	f, ok := registry[h]
	registryMu.RUnlock()
	if !ok {
		return 0, jvlbierrors.NewPathError("mount: unknown handle")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(buf) == 0 {
		return 0, nil
	}

	total := 0
	for total < len(buf) && f.pointer < f.totalSize {
		idx, ok := f.chunkForPointer(f.pointer)
		if !ok {
			break
		}
		chunk := f.chunks[idx]
		if err := f.ensureOpen(idx); err != nil {
			return total, err
		}

		withinChunk := f.pointer - chunk.Offset
		remainInChunk := chunk.Size - withinChunk
		remainInBuf := int64(len(buf) - total)
		n2r := remainInChunk
		if remainInBuf < n2r {
			n2r = remainInBuf
		}

		n, err := unix.Pread(int(f.currentFD.Fd()), buf[total:total+int(n2r)], withinChunk)
		if err != nil {
			return total, jvlbierrors.NewIOError("mount: pread failed", err)
		}
		if n == 0 {
			break
		}
		total += n
		f.pointer += int64(n)
	}

	return total, nil
}

// Whence values mirror POSIX lseek.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// Lseek implements POSIX lseek semantics clipped to [0, total_size];
// negative resulting positions are rejected.
func Lseek(h Handle, offset int64, whence int) (int64, error) {
	registryMu.RLock()
	f, ok := registry[h]
	registryMu.RUnlock()
	if !ok {
		return 0, jvlbierrors.NewPathError("mount: unknown handle")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var newPos int64
	switch whence {
	case SeekSet:
		newPos = offset
	case SeekCur:
		newPos = f.pointer + offset
	case SeekEnd:
		newPos = f.totalSize + offset
	default:
		return 0, jvlbierrors.NewSyntaxError("mount: invalid whence")
	}

	if newPos < 0 {
		return 0, jvlbierrors.NewSyntaxError("mount: invalid argument: negative resulting position")
	}
	if newPos > f.totalSize {
		newPos = f.totalSize
	}

	f.pointer = newPos
	return newPos, nil
}

// Close releases all per-chunk descriptors and removes the handle mapping.
func Close(h Handle) error {
	registryMu.Lock()
	f, ok := registry[h]
	if ok {
		delete(registry, h)
	}
	registryMu.Unlock()
	if !ok {
		return jvlbierrors.NewPathError("mount: unknown handle")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.currentFD != nil {
		_ = f.currentFD.Close()
		f.currentFD = nil
	}
	return nil
}

// TotalSize returns the recording's total size in bytes.
func TotalSize(h Handle) (int64, error) {
	registryMu.RLock()
	f, ok := registry[h]
	registryMu.RUnlock()
	if !ok {
		return 0, jvlbierrors.NewPathError("mount: unknown handle")
	}
	return f.totalSize, nil
}
