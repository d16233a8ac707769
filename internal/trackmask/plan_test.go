package trackmask

import (
	"math/bits"
	"strings"
	"testing"
)

func TestPlanSingleBitMaskGivesSixtyFourToOneRatio(t *testing.T) {
	sol, err := Plan(1)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	in, out := sol.Ratio()
	if in != 64 || out != 1 {
		t.Fatalf("expected a 1:64 compression ratio, got %d:%d", out, in)
	}
}

func TestPlanHighHalfMaskCompletesInOneStepOneCycle(t *testing.T) {
	sol, err := Plan(0xFFFFFFFF00000000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	in, out := sol.Ratio()
	if in != 2 || out != 1 {
		t.Fatalf("expected a 1:2 compression ratio, got %d:%d", out, in)
	}
	if len(sol.Steps) != 1 {
		t.Fatalf("expected a 1-step solution, got %d steps", len(sol.Steps))
	}
	if sol.Steps[0].Shift != -32 {
		t.Errorf("expected the first step to shift by -32, got %d", sol.Steps[0].Shift)
	}
	if bitsMoved := bits.OnesCount64(sol.Steps[0].DestMask); bitsMoved != 32 {
		t.Errorf("expected 32 bits moved, got %d", bitsMoved)
	}
	if sol.Cycles != 1 {
		t.Errorf("expected the solution to complete after one cycle, got %d", sol.Cycles)
	}
}

func TestPlanRejectsDegenerateMasks(t *testing.T) {
	if _, err := Plan(0); err == nil {
		t.Fatal("expected Plan(0) to fail")
	}
	if _, err := Plan(^uint64(0)); err == nil {
		t.Fatal("expected Plan(all-ones) to fail")
	}
}

func TestCompileProducesFormattableSource(t *testing.T) {
	sol, err := Plan(0xFFFFFFFF00000000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	prog, err := sol.Compile(2, 0)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(prog.Source, "func Compress") || !strings.Contains(prog.Source, "func Decompress") {
		t.Fatalf("expected generated source to contain Compress/Decompress, got:\n%s", prog.Source)
	}
}

func TestCompileCachesByKey(t *testing.T) {
	sol, err := Plan(0xFFFFFFFF00000000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	p1, err := sol.Compile(2, 0)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	p2, err := sol.Compile(2, 0)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p1 != p2 {
		t.Fatal("expected repeated Compile calls with the same key to return the cached program")
	}
}
