package transfer

import (
	"context"
	"io"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/chain"
	"github.com/five82/jvlbi/internal/constraints"
	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/headers"
	"github.com/five82/jvlbi/internal/mount"
)

// NewDisk2NetVBS builds the disk2net_vbs mode: like file2net, data is read
// back through the VBS virtual file layer, but it is explicitly addressed
// by the VBS-striped mountpoint set rather than the disk array facade
// directly, and supports pausing (two-stage off) mid-scan. argv is
// "<scan> <mountpoint>...".
func NewDisk2NetVBS() Mode {
	return &baseMode{
		name:     "disk2net_vbs",
		twoStage: true,
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			if len(argv) < 2 {
				return nil, jvlbierrors.NewSyntaxError("disk2net_vbs: requires a scan name and at least one mountpoint")
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
			source := readerSourceStep("disk2net_vbs-source", pool, rt, read)
			sink := writerSinkStep("disk2net_vbs-sink", rt, func(data []byte) error {
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
