package constraints

import "testing"

func TestConstrainByBlocksizeStreamingTCP(t *testing.T) {
	in := Set{
		Blocksize:           1048576,
		MTU:                 9000,
		CompressOffset:      0,
		ApplicationOverhead: 0,
	}
	protoOverhead, nMTU := DeriveOverheads(ProtoTCPFamily, false)
	in[ProtocolOverhead] = protoOverhead
	in[NMTU] = nMTU

	out, err := Constrain(in, nil)
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if out[ReadSize] != 1048576 || out[WriteSize] != 1048576 || out[Blocksize] != 1048576 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestConstrainByFramesizeUDPSMark5B(t *testing.T) {
	in := Set{
		Blocksize:      262144,
		MTU:            9000,
		CompressOffset: 0,
	}
	protoOverhead, nMTU := DeriveOverheads(ProtoUDPFamily, true)
	in[ProtocolOverhead] = protoOverhead
	in[ApplicationOverhead] = 8
	in[NMTU] = nMTU
	in[Framesize] = 10016

	out, err := ConstrainByFramesize(in, 10016, nil)
	if err != nil {
		t.Fatalf("ConstrainByFramesize: %v", err)
	}
	if out[ReadSize]%8 != 0 || out[ReadSize] == 0 {
		t.Fatalf("expected read_size to be a positive multiple of 8, got %d", out[ReadSize])
	}
	if out[Blocksize]%out[Framesize] != 0 && out[Framesize]%out[Blocksize] != 0 {
		t.Fatalf("expected blocksize/framesize to divide one another, got blocksize=%d framesize=%d", out[Blocksize], out[Framesize])
	}
	if err := Validate(out); err != nil {
		t.Fatalf("expected solved set to validate, got %v", err)
	}
}

func TestConstrainIsIdempotent(t *testing.T) {
	in := Set{
		Blocksize:           1048576,
		MTU:                 9000,
		CompressOffset:      0,
		ApplicationOverhead: 0,
	}
	protoOverhead, nMTU := DeriveOverheads(ProtoTCPFamily, false)
	in[ProtocolOverhead] = protoOverhead
	in[NMTU] = nMTU

	once, err := Constrain(in, nil)
	if err != nil {
		t.Fatalf("first Constrain: %v", err)
	}
	twice, err := Constrain(once, nil)
	if err != nil {
		t.Fatalf("second Constrain: %v", err)
	}
	for _, n := range []Name{Blocksize, ReadSize, WriteSize, MTU, ProtocolOverhead, ApplicationOverhead, CompressOffset} {
		if once[n] != twice[n] {
			t.Errorf("constraint %s not idempotent: %d != %d", n, once[n], twice[n])
		}
	}
}

func TestValidateRejectsIncompleteSet(t *testing.T) {
	if err := Validate(Set{}); err == nil {
		t.Fatal("expected Validate to reject an empty set")
	}
}

func TestMTUTooSmallFails(t *testing.T) {
	in := Set{
		Blocksize:           1024,
		MTU:                 10,
		CompressOffset:      0,
		ApplicationOverhead: 0,
	}
	protoOverhead, nMTU := DeriveOverheads(ProtoUDPFamily, false)
	in[ProtocolOverhead] = protoOverhead
	in[NMTU] = nMTU

	if _, err := ConstrainByBlocksize(in, nil); err == nil {
		t.Fatal("expected failure when MTU is smaller than overheads")
	}
}

func TestConstrainByFramesizeMTUTooSmallFails(t *testing.T) {
	in := Set{
		Blocksize:      262144,
		MTU:            10,
		CompressOffset: 0,
	}
	protoOverhead, nMTU := DeriveOverheads(ProtoUDPFamily, true)
	in[ProtocolOverhead] = protoOverhead
	in[ApplicationOverhead] = 8
	in[NMTU] = nMTU
	in[Framesize] = 10016

	if _, err := ConstrainByFramesize(in, 10016, nil); err == nil {
		t.Fatal("expected failure when MTU is smaller than protocol and application overhead")
	}
}
