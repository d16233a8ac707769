package mount

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeChunk(t *testing.T, dir, scan string, num int, data []byte) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	name := filepath.Join(dir, scan+"."+padChunkNumber(num))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func padChunkNumber(n int) string {
	s := "00000000"
	digits := []byte(s)
	for i := len(digits) - 1; n > 0 && i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}

func TestDiscoverChunksMergesAcrossMountpoints(t *testing.T) {
	root1 := t.TempDir()
	root2 := t.TempDir()
	scan := "testscan_001"

	data0 := make([]byte, 10*1024*1024)
	data1 := make([]byte, 5*1024*1024)
	for i := range data0 {
		data0[i] = byte(i)
	}
	for i := range data1 {
		data1[i] = byte(255 - i)
	}

	writeChunk(t, filepath.Join(root1, scan), scan, 0, data0)
	writeChunk(t, filepath.Join(root2, scan), scan, 1, data1)

	chunks, err := DiscoverChunks(context.Background(), scan, []string{root1, root2})
	if err != nil {
		t.Fatalf("DiscoverChunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkNumber != 0 || chunks[1].ChunkNumber != 1 {
		t.Fatalf("chunks not sorted by number: %+v", chunks)
	}
	if chunks[0].Offset != 0 {
		t.Errorf("expected first chunk offset 0, got %d", chunks[0].Offset)
	}
	if chunks[1].Offset != int64(len(data0)) {
		t.Errorf("expected second chunk offset %d, got %d", len(data0), chunks[1].Offset)
	}
}

func TestDiscoverChunksFailsWhenNoneFound(t *testing.T) {
	root := t.TempDir()
	_, err := DiscoverChunks(context.Background(), "missing_scan", []string{root})
	if err == nil {
		t.Fatal("expected error for nonexistent recording")
	}
}

func TestVBSReadSpansChunksAndSeeksToSecondChunk(t *testing.T) {
	root1 := t.TempDir()
	root2 := t.TempDir()
	scan := "testscan_002"

	data0 := make([]byte, 10*1024*1024)
	data1 := make([]byte, 5*1024*1024)
	for i := range data0 {
		data0[i] = 0xAA
	}
	for i := range data1 {
		data1[i] = 0xBB
	}
	writeChunk(t, filepath.Join(root1, scan), scan, 0, data0)
	writeChunk(t, filepath.Join(root2, scan), scan, 1, data1)

	h, err := Open(context.Background(), scan, []string{root1, root2})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(h)

	total, err := TotalSize(h)
	if err != nil {
		t.Fatalf("TotalSize: %v", err)
	}
	if total != int64(len(data0)+len(data1)) {
		t.Fatalf("unexpected total size %d", total)
	}

	pos, err := Lseek(h, int64(len(data0)), SeekSet)
	if err != nil {
		t.Fatalf("Lseek: %v", err)
	}
	if pos != int64(len(data0)) {
		t.Fatalf("Lseek returned %d, want %d", pos, len(data0))
	}

	buf := make([]byte, 16)
	n, err := Read(h, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("expected full read of %d bytes, got %d", len(buf), n)
	}
	for i, b := range buf {
		if b != 0xBB {
			t.Fatalf("byte %d of second chunk read as %x, want 0xBB", i, b)
		}
	}
}

func TestVBSReadAcrossChunkBoundary(t *testing.T) {
	root := t.TempDir()
	scan := "testscan_003"

	data0 := []byte{1, 2, 3, 4}
	data1 := []byte{5, 6, 7, 8}
	writeChunk(t, filepath.Join(root, scan), scan, 0, data0)
	writeChunk(t, filepath.Join(root, scan), scan, 1, data1)

	h, err := Open(context.Background(), scan, []string{root})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(h)

	if _, err := Lseek(h, 2, SeekSet); err != nil {
		t.Fatalf("Lseek: %v", err)
	}

	buf := make([]byte, 4)
	n, err := Read(h, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	want := []byte{3, 4, 5, 6}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, buf[i], want[i])
		}
	}
}

func TestVBSLseekClampsToTotalSize(t *testing.T) {
	root := t.TempDir()
	scan := "testscan_004"
	writeChunk(t, filepath.Join(root, scan), scan, 0, []byte{1, 2, 3})

	h, err := Open(context.Background(), scan, []string{root})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(h)

	pos, err := Lseek(h, 1000, SeekSet)
	if err != nil {
		t.Fatalf("Lseek: %v", err)
	}
	if pos != 3 {
		t.Fatalf("expected clamp to total size 3, got %d", pos)
	}

	if _, err := Lseek(h, -1000, SeekCur); err == nil {
		t.Fatal("expected negative resulting position to fail")
	}
}
