package transfer

import "context"

// NewIn2Disk builds the in2disk mode: the capture board streams live data
// directly into the disk array over hardware DMA. This module's role is
// orchestration only — Setup/Start the board and bind the disk array's
// input channel, then wait for off/disconnect to stop both — the bulk data
// path itself runs beneath CaptureBoard/DiskArray, outside this module.
func NewIn2Disk() Mode {
	return &baseMode{
		name: "in2disk",
		build: func(argv []string, rt *Runtime) (ChainHandle, error) {
			start := func(ctx context.Context) error {
				if err := rt.CaptureBoard.Setup(ctx); err != nil {
					return err
				}
				if err := rt.DiskArray.SetMode("record"); err != nil {
					return err
				}
				if err := rt.DiskArray.BindInputChannel(0); err != nil {
					return err
				}
				return rt.CaptureBoard.Start(ctx)
			}
			stop := func(ctx context.Context) error {
				if err := rt.CaptureBoard.Stop(ctx); err != nil {
					return err
				}
				return rt.DiskArray.Stop()
			}
			return controlOnlyChain("in2disk", start, stop)
		},
	}
}
