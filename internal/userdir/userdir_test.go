package userdir

import (
	"path/filepath"
	"testing"
)

func sampleDirectory() *Directory {
	return &Directory{
		RecordPointer: 123456,
		PlayPointer:   100,
		PlayRate:      32.0,
		Scans: []ScanEntry{
			{Name: "scan_001", Start: 0, Length: 1000},
			{Name: "scan_002", Start: 1000, Length: 2000},
		},
	}
}

func TestLegacyLayoutRoundTrip(t *testing.T) {
	l := legacyLayout{name: "test", maxScans: 8, maxNameLen: 16, vsnBytes: 0}
	dir := sampleDirectory()

	data := l.Serialize(dir)
	got, insanity, err := l.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if insanity != 0 {
		t.Errorf("expected zero insanity for a freshly serialized directory, got %d", insanity)
	}
	if len(got.Scans) != len(dir.Scans) {
		t.Fatalf("expected %d scans, got %d", len(dir.Scans), len(got.Scans))
	}
	for i := range dir.Scans {
		if got.Scans[i] != dir.Scans[i] {
			t.Errorf("scan %d: got %+v, want %+v", i, got.Scans[i], dir.Scans[i])
		}
	}
	if got.RecordPointer != dir.RecordPointer || got.PlayPointer != dir.PlayPointer {
		t.Errorf("pointer mismatch: got record=%d play=%d", got.RecordPointer, got.PlayPointer)
	}
}

func TestLegacyLayoutWithVSNRoundTrip(t *testing.T) {
	l := legacyLayout{name: "test-vsn2", maxScans: 4, maxNameLen: 16, vsnBytes: 32}
	dir := sampleDirectory()
	dir.VSN = "VSN0001"
	dir.CompanionVSN = "VSN0002"

	data := l.Serialize(dir)
	got, _, err := l.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.VSN != dir.VSN || got.CompanionVSN != dir.CompanionVSN {
		t.Errorf("VSN round-trip failed: got VSN=%q companion=%q", got.VSN, got.CompanionVSN)
	}
}

func TestEnhancedLayoutRoundTrip(t *testing.T) {
	e := enhancedLayout{name: "test-enh", maxScans: 8, maxNameLen: 16, validDataMin: 1, validDataMax: 10}
	dir := sampleDirectory()

	data := e.Serialize(dir)
	got, insanity, err := e.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if insanity != 0 {
		t.Errorf("expected zero insanity, got %d", insanity)
	}
	if len(got.Scans) != len(dir.Scans) {
		t.Fatalf("expected %d scans, got %d", len(dir.Scans), len(got.Scans))
	}
}

func TestEnhancedLayoutDetectsOutOfOrderScanNumbers(t *testing.T) {
	e := enhancedLayout{name: "test-enh2", maxScans: 8, maxNameLen: 16, validDataMin: 1, validDataMax: 10}
	dir := sampleDirectory()
	data := e.Serialize(dir)

	// Corrupt the first entry's scan_number field (should be 1).
	data[enhancedHeaderSize] = 99

	_, insanity, err := e.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if insanity == 0 {
		t.Error("expected nonzero insanity after corrupting scan_number")
	}
}

func TestSelectLayoutPicksLowestInsanity(t *testing.T) {
	dir := sampleDirectory()
	layout := LayoutByName("Mark5ADirLegacy")
	if layout == nil {
		t.Fatal("expected Mark5ADirLegacy to be registered")
	}
	data := layout.Serialize(dir)

	selected, got, err := SelectLayout(data)
	if err != nil {
		t.Fatalf("SelectLayout: %v", err)
	}
	if selected.Name() != "Mark5ADirLegacy" {
		t.Errorf("expected Mark5ADirLegacy selected, got %s", selected.Name())
	}
	if len(got.Scans) != len(dir.Scans) {
		t.Errorf("expected %d scans after selection, got %d", len(dir.Scans), len(got.Scans))
	}
}

func TestSelectLayoutRejectsImpossibleSize(t *testing.T) {
	if _, _, err := SelectLayout([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected selection to fail for an implausibly small buffer")
	}
}

func TestMirrorWriteReadRoundTrip(t *testing.T) {
	dir := sampleDirectory()
	layout := LayoutByName("Mark5ADirLegacy")
	path := filepath.Join(t.TempDir(), "mirror")

	if err := WriteMirror(path, layout, dir); err != nil {
		t.Fatalf("WriteMirror: %v", err)
	}

	_, got, err := ReadMirror(path)
	if err != nil {
		t.Fatalf("ReadMirror: %v", err)
	}
	if len(got.Scans) != len(dir.Scans) {
		t.Fatalf("expected %d scans, got %d", len(dir.Scans), len(got.Scans))
	}
}

func TestDirectoryRecoverSynthesizesScanWhenEmpty(t *testing.T) {
	dir := &Directory{}
	dir.Recover(5000)
	if len(dir.Scans) != 1 {
		t.Fatalf("expected one synthesized scan, got %d", len(dir.Scans))
	}
	if dir.Scans[0].Length != 5000 {
		t.Errorf("expected recovered scan length 5000, got %d", dir.Scans[0].Length)
	}
}

func TestDirectoryRecoverExtendsLastScan(t *testing.T) {
	dir := &Directory{Scans: []ScanEntry{{Name: "a", Start: 0, Length: 100}}}
	dir.Recover(500)
	if dir.Scans[0].Length != 500 {
		t.Errorf("expected extended scan length 500, got %d", dir.Scans[0].Length)
	}
}

func TestDirectoryRemoveLastScanClampsPointers(t *testing.T) {
	dir := &Directory{
		Scans:         []ScanEntry{{Start: 0, Length: 100}, {Start: 100, Length: 50}},
		RecordPointer: 1000,
		PlayPointer:   1000,
	}
	if err := dir.RemoveLastScan(); err != nil {
		t.Fatalf("RemoveLastScan: %v", err)
	}
	if len(dir.Scans) != 1 {
		t.Fatalf("expected 1 scan remaining, got %d", len(dir.Scans))
	}
	if dir.RecordPointer != 100 || dir.PlayPointer != 100 {
		t.Errorf("expected pointers clamped to 100, got record=%d play=%d", dir.RecordPointer, dir.PlayPointer)
	}
}

func TestAllRegisteredLayoutsHaveUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, l := range layouts {
		if seen[l.Name()] {
			t.Fatalf("duplicate layout name %q", l.Name())
		}
		seen[l.Name()] = true
	}
	if len(layouts) != 18 {
		t.Fatalf("expected 18 registered layouts, got %d", len(layouts))
	}
}
