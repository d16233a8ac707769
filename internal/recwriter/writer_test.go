package recwriter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/jvlbi/internal/block"
)

func makeTestBlock(t *testing.T, data []byte) block.TaggedBlock {
	t.Helper()
	pool := block.NewPool(len(data), 1)
	b, err := pool.Get(context.Background())
	if err != nil {
		t.Fatalf("pool.Get: %v", err)
	}
	b.Length = len(data)
	copy(b.Bytes(), data)
	return block.TaggedBlock{Block: b}
}

func TestMountpointAssignmentIsDeterministic(t *testing.T) {
	mountpoints := []string{"/mnt/a", "/mnt/b", "/mnt/c"}
	for seq := uint64(0); seq < 50; seq++ {
		a := mountpointFor(mountpoints, "stream1", seq)
		b := mountpointFor(mountpoints, "stream1", seq)
		if a != b {
			t.Fatalf("mountpointFor not deterministic for seq %d: %d vs %d", seq, a, b)
		}
	}
}

func TestMountpointAssignmentSpreadsLoad(t *testing.T) {
	mountpoints := []string{"/mnt/a", "/mnt/b", "/mnt/c", "/mnt/d"}
	counts := make(map[int]int)
	for seq := uint64(0); seq < 4000; seq++ {
		idx := mountpointFor(mountpoints, "streamX", seq)
		counts[idx]++
	}
	if len(counts) != len(mountpoints) {
		t.Fatalf("expected all %d mountpoints used, got %d", len(mountpoints), len(counts))
	}
	for idx, c := range counts {
		if c < 800 || c > 1200 {
			t.Errorf("mountpoint %d got %d assignments, expected roughly even spread near 1000", idx, c)
		}
	}
}

func TestWriterVBSWritesChunkFiles(t *testing.T) {
	m1 := t.TempDir()
	m2 := t.TempDir()

	w := NewWriter("rec", []string{m1, m2}, VBS)
	for i := 0; i < 5; i++ {
		tb := makeTestBlock(t, []byte{byte(i), byte(i), byte(i)})
		if err := w.Write(tb); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	var found int
	for _, root := range []string{m1, m2} {
		entries, err := os.ReadDir(filepath.Join(root, "rec"))
		if err != nil {
			continue
		}
		found += len(entries)
	}
	if found != 5 {
		t.Fatalf("expected 5 total chunk files across mountpoints, found %d", found)
	}
}

func TestWriterMark6StripesThreeBlocksAcrossTwoMountpoints(t *testing.T) {
	m1 := t.TempDir()
	m2 := t.TempDir()

	w := NewWriter("rec", []string{m1, m2}, Mark6)
	w.Mark6BlockSize = 10 * 1024 * 1024
	defer w.Close()

	sizes := []int{10 * 1024 * 1024, 10 * 1024 * 1024, 9 * 1024 * 1024}
	for _, sz := range sizes {
		data := make([]byte, sz)
		tb := makeTestBlock(t, data)
		if err := w.Write(tb); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	blockNums := make(map[uint64]bool)
	for _, root := range []string{m1, m2} {
		path := filepath.Join(root, "rec")
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		hdr := make([]byte, mark6HeaderSize)
		if _, err := f.Read(hdr); err != nil {
			t.Fatalf("reading header: %v", err)
		}
		h, err := decodeMark6Header(hdr)
		if err != nil {
			t.Fatalf("decodeMark6Header: %v", err)
		}
		if h.Sync != Mark6Sync {
			t.Fatalf("bad sync word in %s", path)
		}

		for {
			recHdr := make([]byte, mark6RecordHeaderSize)
			n, err := f.Read(recHdr)
			if n == 0 || err != nil {
				break
			}
			blockNum := leUint64(recHdr[0:8])
			size := leUint32(recHdr[8:12])
			blockNums[blockNum] = true
			if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
				break
			}
		}
	}

	if len(blockNums) != 3 {
		t.Fatalf("expected union of blocknums to be {0,1,2}, got %v", blockNums)
	}
	for _, want := range []uint64{0, 1, 2} {
		if !blockNums[want] {
			t.Errorf("missing blocknum %d", want)
		}
	}
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func leUint32(b []byte) uint32 {
	var v uint32
	for i := 3; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}
