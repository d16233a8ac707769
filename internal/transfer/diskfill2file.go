package transfer

import (
	"os"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/constraints"
	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/headers"
)

// NewDiskFill2File builds the diskfill2file mode: a synthetic fill pattern
// is written to both the disk array and a local mirror file, exercising the
// disk-write path without hardware attached. argv is "<mirror-path>".
func NewDiskFill2File() Mode {
	return &baseMode{
		name: "diskfill2file",
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			if len(argv) < 1 {
				return nil, jvlbierrors.NewSyntaxError("diskfill2file: requires a mirror file path")
			}
			f, err := os.Create(argv[0])
			if err != nil {
				return nil, jvlbierrors.NewIOError("diskfill2file: failed to create mirror file", err)
			}

			spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
			if err != nil {
				f.Close()
				return nil, err
			}
			readSize := int(spec.Constraints[constraints.ReadSize])
			pool := block.NewPool(readSize, 8)

			source := fillSourceStep("diskfill2file-source", pool, rt)
			sink := writerSinkStep("diskfill2file-sink", rt, func(data []byte) error {
				if _, err := rt.DiskArray.Append(data); err != nil {
					return err
				}
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
