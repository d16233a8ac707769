package transfer

import (
	"context"

	"github.com/five82/jvlbi/internal/chain"
)

// controlOnlyChain builds a one-step chain whose body starts the given
// collaborators, blocks until cancellation, then stops them — used by the
// live-capture modes (in2disk, in2net) where the bulk data path runs over
// hardware DMA beneath CaptureBoard/DiskArray and this module's only role is
// orchestration, not byte copying.
func controlOnlyChain(name string, start func(ctx context.Context) error, stop func(ctx context.Context) error) (*chain.Chain, error) {
	c := chain.New()
	step := chain.Step{
		Name: name,
		N:    1,
		Body: func(sc *chain.StepCtx) error {
			if err := start(context.Background()); err != nil {
				return err
			}
			<-cancelled(sc.CancelFD)
			return stop(context.Background())
		},
	}
	if _, err := c.AppendStep(step); err != nil {
		return nil, err
	}
	if err := c.Close(); err != nil {
		return nil, err
	}
	return c, nil
}
