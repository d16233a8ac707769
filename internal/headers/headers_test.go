package headers

import (
	"testing"

	"github.com/five82/jvlbi/internal/dot/hitime"
)

func TestMark5BRoundTrip(t *testing.T) {
	codec := NewMark5BHeader(1000)
	window := make([]byte, 16)

	want := hitime.New(123456789, 42, 1000)
	if err := codec.EncodeTime(window, want); err != nil {
		t.Fatalf("EncodeTime: %v", err)
	}
	if !codec.Check(window) {
		t.Fatal("expected Check to pass after EncodeTime")
	}
	got, err := codec.DecodeTime(window)
	if err != nil {
		t.Fatalf("DecodeTime: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip mismatch: want %s got %s", want, got)
	}
}

func TestMark5BCheckRejectsBadSyncword(t *testing.T) {
	codec := NewMark5BHeader(1000)
	window := make([]byte, 16)
	if codec.Check(window) {
		t.Fatal("expected Check to fail on a zeroed window")
	}
}

func TestVDIFLegacyRoundTrip(t *testing.T) {
	codec := NewVDIFHeader(true, 1000)
	window := make([]byte, 16)

	want := hitime.New(600123456, 7, 1000)
	if err := codec.EncodeTime(window, want); err != nil {
		t.Fatalf("EncodeTime: %v", err)
	}
	if !codec.Check(window) {
		t.Fatal("expected Check to pass after EncodeTime")
	}
	got, err := codec.DecodeTime(window)
	if err != nil {
		t.Fatalf("DecodeTime: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip mismatch: want %s got %s", want, got)
	}
}

func TestVDIFNormalDataFrameLength(t *testing.T) {
	window := make([]byte, 32)
	SetDataFrameLength8(window, 1252)
	if got := DataFrameLength8(window); got != 1252 {
		t.Errorf("expected data_frame_len8=1252, got %d", got)
	}
}

func TestMark4RoundTripAtLowestCorrectionTier(t *testing.T) {
	codec := NewMark4Header(8, 2_000_000, 8000)
	window := make([]byte, 8*20)

	want := hitime.New(86399, 3, 8000)
	if err := codec.EncodeTime(window, want); err != nil {
		t.Fatalf("EncodeTime: %v", err)
	}
	if !codec.Check(window) {
		t.Fatal("expected Check to pass after EncodeTime")
	}
	if _, err := codec.DecodeTime(window); err != nil {
		t.Fatalf("DecodeTime: %v", err)
	}
}

func TestDescriptorInvariants(t *testing.T) {
	if _, err := NewDescriptor(Mark5B, 1, 32_000_000, 0, 4, 16, 10016, 16, NewMark5BHeader(1000)); err != nil {
		t.Fatalf("expected a valid descriptor, got %v", err)
	}
}

func TestDescriptorDivideIntZeroesHeader(t *testing.T) {
	d, err := NewDescriptor(VDIFNormal, 1, 0, 0, 0, 32, 1056, 32, NewVDIFHeader(false, 1000))
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}
	d.NTrack = 4
	split, err := d.DivideInt(4)
	if err != nil {
		t.Fatalf("DivideInt: %v", err)
	}
	if split.HeaderSize != 0 || split.NTrack != 1 {
		t.Errorf("expected headerless 1-track split, got %+v", split)
	}
}
