package transfer

import (
	"testing"

	"github.com/five82/jvlbi/internal/constraints"
	"github.com/five82/jvlbi/internal/headers"
)

func TestBuildChainDerivesReadSizeFromBlocksize(t *testing.T) {
	spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	if spec.Constraints[constraints.ReadSize] == 0 {
		t.Fatal("expected a nonzero derived read size")
	}
	if spec.Descriptor != nil {
		t.Error("expected no descriptor when no format/framesize is requested")
	}
	if spec.Compressor != nil {
		t.Error("expected no compressor when trackMask is zero")
	}
}

func TestBuildChainPlansCompressionWhenTrackMaskSet(t *testing.T) {
	spec, err := BuildChain(defaultConstraintInput(), 0x1, headers.Format(0), 0)
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	if spec.Compressor == nil {
		t.Fatal("expected a compression plan when trackMask is nonzero")
	}
}

func TestBuildChainBuildsDescriptorForFixedFrameSize(t *testing.T) {
	spec, err := BuildChain(defaultConstraintInput(), 0, headers.Mark5B, 8000)
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	if spec.Descriptor == nil {
		t.Fatal("expected a descriptor when a frame size is requested")
	}
}
