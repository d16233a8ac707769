package transfer

import (
	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/constraints"
	"github.com/five82/jvlbi/internal/headers"
)

// NewFill2Net builds the fill2net mode: a synthetic fill pattern is sent
// over the network in place of a real data source, used to exercise the
// network path without hardware attached.
func NewFill2Net() Mode {
	return &baseMode{
		name: "fill2net",
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
			if err != nil {
				return nil, err
			}
			readSize := int(spec.Constraints[constraints.ReadSize])
			pool := block.NewPool(readSize, 8)

			source := fillSourceStep("fill2net-source", pool, rt)
			sink := writerSinkStep("fill2net-sink", rt, func(data []byte) error {
				_, err := rt.Transport.Send(data)
				return err
			})

			return newLinearChain(queueCapacity, source, sink, nil)
		},
	}
}
