package mount

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/logging"
)

// chunkFilePattern matches "<scan>.NNNNNNNN" (8 decimal digits).
var chunkFilePattern = regexp.MustCompile(`^(.+)\.(\d{8})$`)

// Chunk is one recording chunk file: its path, size, offset within the
// recording once merged and sorted, and its 8-digit chunk number.
type Chunk struct {
	Path          string
	Size          int64
	Offset        int64
	ChunkNumber   int
}

// DiscoverChunks locates every file matching root/scan/scan.NNNNNNNN across
// roots in parallel (one goroutine per mountpoint via errgroup), merges the
// results into a single set sorted by chunk number, and computes prefix-sum
// offsets. A single mountpoint's stat failure is logged and tolerated; the
// recording is reported missing only if the merged set ends up empty.
func DiscoverChunks(ctx context.Context, scan string, roots []string) ([]Chunk, error) {
	var mu sync.Mutex
	var all []Chunk

	g, gctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		root := root
		g.Go(func() error {
			dir := filepath.Join(root, scan)
			entries, err := os.ReadDir(dir)
			if err != nil {
				logging.SWarn(fmt.Sprintf("mount: skipping unreadable mountpoint directory %s: %v", dir, err))
				return nil
			}
			var local []Chunk
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				m := chunkFilePattern.FindStringSubmatch(e.Name())
				if m == nil || m[1] != scan {
					continue
				}
				num, err := strconv.Atoi(m[2])
				if err != nil {
					continue
				}
				info, err := e.Info()
				if err != nil {
					logging.SWarn(fmt.Sprintf("mount: could not stat %s: %v", e.Name(), err))
					continue
				}
				local = append(local, Chunk{
					Path:        filepath.Join(dir, e.Name()),
					Size:        info.Size(),
					ChunkNumber: num,
				})
			}

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(all) == 0 {
		return nil, jvlbierrors.NewNoSuchRecordingError(scan)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ChunkNumber < all[j].ChunkNumber })

	var offset int64
	for i := range all {
		all[i].Offset = offset
		offset += all[i].Size
	}

	return all, nil
}
