package transfer

import (
	"context"
	"io"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/constraints"
	"github.com/five82/jvlbi/internal/headers"
)

// NewDisk2Net builds the disk2net mode: the disk array's playback stream
// feeds the network transport. Off pauses the chain (two-stage) so a
// subsequent on can resume mid-scan without redialing.
func NewDisk2Net() Mode {
	return &baseMode{
		name:     "disk2net",
		twoStage: true,
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
			if err != nil {
				return nil, err
			}
			readSize := int(spec.Constraints[constraints.ReadSize])
			pool := block.NewPool(readSize, 8)

			playCh := make(chan []byte, 8)
			playCtx, cancelPlay := context.WithCancel(context.Background())
			go func() {
				_ = rt.DiskArray.Playback(playCtx, playCh)
			}()

			read := func(buf []byte) (int, error) {
				data, ok := <-playCh
				if !ok {
					return 0, io.EOF
				}
				n := copy(buf, data)
				return n, nil
			}
			source := readerSourceStep("disk2net-source", pool, rt, read)
			sink := writerSinkStep("disk2net-sink", rt, func(data []byte) error {
				_, err := rt.Transport.Send(data)
				return err
			})

			c, err := newLinearChain(queueCapacity, source, sink, nil)
			if err != nil {
				cancelPlay()
				return nil, err
			}
			return &cancelWrappedChain{Chain: c, cancel: cancelPlay}, nil
		},
	}
}
