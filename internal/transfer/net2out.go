package transfer

import (
	"os"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/constraints"
	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/headers"
)

// NewNet2Out builds the net2out mode: data arriving over the network
// transport is written to a plain local file. argv is "<path>".
func NewNet2Out() Mode {
	return &baseMode{
		name: "net2out",
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			if len(argv) < 1 {
				return nil, jvlbierrors.NewSyntaxError("net2out: requires an output path")
			}
			f, err := os.Create(argv[0])
			if err != nil {
				return nil, jvlbierrors.NewIOError("net2out: failed to create output file", err)
			}

			spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
			if err != nil {
				f.Close()
				return nil, err
			}
			readSize := int(spec.Constraints[constraints.ReadSize])
			pool := block.NewPool(readSize, 8)

			read := func(buf []byte) (int, error) {
				return rt.Transport.Recv(buf)
			}
			source := readerSourceStep("net2out-source", pool, rt, read)
			sink := writerSinkStep("net2out-sink", rt, func(data []byte) error {
				_, err := f.Write(data)
				return err
			})

			c, err := newLinearChain(queueCapacity, source, sink, nil)
			if err != nil {
				f.Close()
				return nil, err
			}
			return &cancelWrappedChain{Chain: c, cancel: func() { f.Close() }}, nil
		},
	}
}
