package trackmask

import (
	"bytes"
	"fmt"
	"go/format"
	"sync"
)

// Program is a compiled compress/decompress pair: rendered Go source plus
// the key it was compiled for, cached so repeated requests for the same
// (mask, numWords, signMagDistance) triple reuse the same source instead of
// re-emitting it.
type Program struct {
	Key    ProgramKey
	Source string
}

// ProgramKey identifies a compiled compression program.
type ProgramKey struct {
	Mask            uint64
	NumWords        int
	SignMagDistance int
}

// Cache holds the last compiled program per key, mirroring the "last
// compiled triple is reused when unchanged" resource-sharing rule of §5.
var Cache sync.Map // map[ProgramKey]*Program

// Compile renders Go source implementing a compress/decompress function
// pair for the solution, processing numWords input words per call. If
// signMagDistance is nonzero, a reconstruction shift recovering magnitude
// bits from sign bits at that bit distance is also emitted. The out-of-
// process build/load step (go build -buildmode=plugin, plugin.Open) is the
// caller's responsibility; Compile only produces source text.
func (s *Solution) Compile(numWords int, signMagDistance int) (*Program, error) {
	key := ProgramKey{Mask: s.Mask, NumWords: numWords, SignMagDistance: signMagDistance}
	if cached, ok := Cache.Load(key); ok {
		return cached.(*Program), nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package compressed\n\n")
	fmt.Fprintf(&buf, "// Compress packs %d-bit track mask %#x across %d input words.\n", onesCount(s.Mask), s.Mask, numWords)
	fmt.Fprintf(&buf, "func Compress(src []uint64) []uint64 {\n")
	fmt.Fprintf(&buf, "\tout := make([]uint64, 0, %d)\n", s.CompressedCycleLen)
	fmt.Fprintf(&buf, "\tvar acc uint64\n")
	fmt.Fprintf(&buf, "\tfor i := 0; i < len(src) && i < %d; i++ {\n", numWords)
	for i, step := range s.Steps {
		fmt.Fprintf(&buf, "\t\tif i%%%d == %d {\n", len(s.Steps), i)
		fmt.Fprintf(&buf, "\t\t\tacc |= shift(src[i]&%#016x, %d)\n", step.SourceMask, step.Shift)
		fmt.Fprintf(&buf, "\t\t}\n")
	}
	fmt.Fprintf(&buf, "\t\tif (i+1)%%%d == 0 {\n", s.CycleLen)
	fmt.Fprintf(&buf, "\t\t\tout = append(out, acc)\n")
	fmt.Fprintf(&buf, "\t\t\tacc = 0\n")
	fmt.Fprintf(&buf, "\t\t}\n")
	fmt.Fprintf(&buf, "\t}\n")
	fmt.Fprintf(&buf, "\treturn out\n")
	fmt.Fprintf(&buf, "}\n\n")

	fmt.Fprintf(&buf, "// Decompress is the inverse of Compress on the retained-bit positions.\n")
	fmt.Fprintf(&buf, "func Decompress(compressed []uint64) []uint64 {\n")
	fmt.Fprintf(&buf, "\tout := make([]uint64, 0, %d)\n", s.CycleLen)
	fmt.Fprintf(&buf, "\tfor _, word := range compressed {\n")
	for i, step := range s.Steps {
		fmt.Fprintf(&buf, "\t\tout = append(out, shift(word&%#016x, %d)) // step %d\n", step.DestMask, -step.Shift, i)
	}
	fmt.Fprintf(&buf, "\t}\n")
	if signMagDistance != 0 {
		fmt.Fprintf(&buf, "\tfor i := range out {\n")
		fmt.Fprintf(&buf, "\t\tout[i] = reconstructSignMagnitude(out[i], %d)\n", signMagDistance)
		fmt.Fprintf(&buf, "\t}\n")
	}
	fmt.Fprintf(&buf, "\treturn out\n")
	fmt.Fprintf(&buf, "}\n\n")

	fmt.Fprintf(&buf, "func shift(v uint64, s int) uint64 {\n")
	fmt.Fprintf(&buf, "\tif s >= 0 {\n\t\treturn v << uint(s)\n\t}\n")
	fmt.Fprintf(&buf, "\treturn v >> uint(-s)\n")
	fmt.Fprintf(&buf, "}\n")

	if signMagDistance != 0 {
		fmt.Fprintf(&buf, "\nfunc reconstructSignMagnitude(v uint64, distance int) uint64 {\n")
		fmt.Fprintf(&buf, "\tsign := (v >> uint(distance)) & 1\n")
		fmt.Fprintf(&buf, "\tif sign == 1 {\n\t\treturn v | (uint64(1) << uint(distance-1))\n\t}\n")
		fmt.Fprintf(&buf, "\treturn v\n")
		fmt.Fprintf(&buf, "}\n")
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("trackmask: codegen produced invalid Go source: %w", err)
	}

	prog := &Program{Key: key, Source: string(formatted)}
	Cache.Store(key, prog)
	return prog, nil
}

func onesCount(m uint64) int {
	n := 0
	for m != 0 {
		n++
		m &= m - 1
	}
	return n
}
