package transfer

import (
	"context"
	"io"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/chain"
	"github.com/five82/jvlbi/internal/constraints"
	"github.com/five82/jvlbi/internal/headers"
	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/mount"
)

// NewFile2Net builds the file2net mode: a previously recorded scan is read
// back through the VBS virtual file layer and sent over the network.
// argv is "<scan> <mountpoint>...".
func NewFile2Net() Mode {
	return &baseMode{
		name: "file2net",
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			if len(argv) < 2 {
				return nil, jvlbierrors.NewSyntaxError("file2net: requires a scan name and at least one mountpoint")
			}
			scan := argv[0]
			roots := argv[1:]

			spec, err := BuildChain(defaultConstraintInput(), 0, headers.Format(0), 0)
			if err != nil {
				return nil, err
			}
			readSize := int(spec.Constraints[constraints.ReadSize])
			pool := block.NewPool(readSize, 8)

			h, err := mount.Open(context.Background(), scan, roots)
			if err != nil {
				return nil, err
			}

			read := func(buf []byte) (int, error) {
				n, rerr := mount.Read(h, buf)
				if rerr != nil {
					return n, rerr
				}
				if n == 0 {
					return 0, io.EOF
				}
				return n, nil
			}
			source := readerSourceStep("file2net-source", pool, rt, read)
			sink := writerSinkStep("file2net-sink", rt, func(data []byte) error {
				_, err := rt.Transport.Send(data)
				return err
			})

			c := chain.New()
			if _, err := c.AppendStep(source); err != nil {
				mount.Close(h)
				return nil, err
			}
			if _, err := c.AppendQueue(queueCapacity); err != nil {
				mount.Close(h)
				return nil, err
			}
			if _, err := c.AppendStep(sink); err != nil {
				mount.Close(h)
				return nil, err
			}
			if err := c.RegisterFinal(func() { mount.Close(h) }); err != nil {
				mount.Close(h)
				return nil, err
			}
			if err := c.Close(); err != nil {
				mount.Close(h)
				return nil, err
			}
			return c, nil
		},
	}
}
