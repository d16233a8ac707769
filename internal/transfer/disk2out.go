package transfer

import (
	"context"
	"io"
	"os"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/constraints"
	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/headers"
)

// NewDisk2Out builds the disk2out mode: the disk array's playback stream is
// written to a plain local file. argv is "<path>".
func NewDisk2Out() Mode {
	return &baseMode{
		name:     "disk2out",
		twoStage: true,
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			if len(argv) < 1 {
				return nil, jvlbierrors.NewSyntaxError("disk2out: requires an output path")
			}
			f, err := os.Create(argv[0])
			if err != nil {
				return nil, jvlbierrors.NewIOError("disk2out: failed to create output file", err)
			}

			spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
			if err != nil {
				f.Close()
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
				return copy(buf, data), nil
			}
			source := readerSourceStep("disk2out-source", pool, rt, read)
			sink := writerSinkStep("disk2out-sink", rt, func(data []byte) error {
				_, err := f.Write(data)
				return err
			})

			c, err := newLinearChain(queueCapacity, source, sink, nil)
			if err != nil {
				cancelPlay()
				f.Close()
				return nil, err
			}
			return &cancelWrappedChain{Chain: c, cancel: func() { cancelPlay(); f.Close() }}, nil
		},
	}
}
