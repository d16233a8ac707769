package transfer

import "github.com/five82/jvlbi/internal/chain"

// cancelWrappedChain decorates a *chain.Chain with an extra cancel func run
// once the chain stops, used by modes whose source is fed by a background
// goroutine (e.g. DiskArray.Playback) that needs its own context cancelled
// alongside the chain itself.
type cancelWrappedChain struct {
	*chain.Chain
	cancel func()
}

func (c *cancelWrappedChain) Stop(gentle bool) error {
	err := c.Chain.Stop(gentle)
	c.cancel()
	return err
}
