package transfer

import "context"

// NewIn2Net builds the in2net mode: the capture board streams live data
// directly onto the network transport over hardware DMA. Like in2disk, this
// module only orchestrates Setup/Start and Stop/Close — the bulk data
// path runs beneath the facades.
func NewIn2Net() Mode {
	return &baseMode{
		name: "in2net",
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			start := func(ctx context.Context) error {
				if err := rt.CaptureBoard.Setup(ctx); err != nil {
					return err
				}
				return rt.CaptureBoard.Start(ctx)
			}
			stop := func(ctx context.Context) error {
				if err := rt.CaptureBoard.Stop(ctx); err != nil {
					return err
				}
				return rt.Transport.Close()
			}
			return controlOnlyChain("in2net", start, stop)
		},
	}
}
