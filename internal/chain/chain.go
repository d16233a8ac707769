// Package chain implements the processing chain runtime: a dynamically
// constructed, staged, multi-threaded pipeline with per-stage worker pools,
// backpressure queues, cooperative cancellation, and per-stage lifecycle
// hooks.
package chain

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/five82/jvlbi/internal/block"
	jvlbierrors "github.com/five82/jvlbi/internal/errors"
	"github.com/five82/jvlbi/internal/queue"
)

type chainState int

const (
	stateOpen chainState = iota
	stateClosed
	stateRunning
	stateJoining
	stateCancelled
)

type cancelEntry struct {
	step *Step
	fn   func(any)
}

// Chain is an ordered sequence of steps with queues interleaved between
// adjacent steps, plus registered cancellations/cleanups/finalizers.
// Invariant: steps and queues strictly alternate producer -> queue ->
// consumer; cancellations/cleanups/finalizers may only be added while open.
type Chain struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state chainState

	steps  []*Step
	queues []*queue.Queue[block.TaggedBlock]

	cancels  []cancelEntry
	cleanups []cancelEntry
	finals   []func()

	wg          sync.WaitGroup
	chainLive   int32
	finalOnce   sync.Once
	queueDepths []int
}

// New creates an empty, open chain.
func New() *Chain {
	c := &Chain{state: stateOpen}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *Chain) requireOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateOpen {
		return jvlbierrors.NewWrongStateError("chain: topology mutation only allowed while open")
	}
	return nil
}

// AppendStep appends a new step to the chain. Only valid while open.
func (c *Chain) AppendStep(s Step) (*Step, error) {
	if err := c.requireOpen(); err != nil {
		return nil, err
	}
	st := newStep(s)
	c.mu.Lock()
	c.steps = append(c.steps, st)
	c.mu.Unlock()
	return st, nil
}

// AppendQueue appends a queue of the given capacity between the two most
// recently appended steps. Only valid while open.
func (c *Chain) AppendQueue(capacity int) (*queue.Queue[block.TaggedBlock], error) {
	if err := c.requireOpen(); err != nil {
		return nil, err
	}
	q := queue.New[block.TaggedBlock](capacity)
	c.mu.Lock()
	c.queues = append(c.queues, q)
	c.queueDepths = append(c.queueDepths, capacity)
	c.mu.Unlock()
	return q, nil
}

// RegisterCancel registers a cancellation function for a step, run via
// Communicate when Stop is called. Only valid while open.
func (c *Chain) RegisterCancel(step *Step, fn func(any)) error {
	if err := c.requireOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.cancels = append(c.cancels, cancelEntry{step: step, fn: fn})
	c.mu.Unlock()
	return nil
}

// RegisterCleanup registers a cleanup function for a step, run via
// Communicate after every worker has joined. Only valid while open.
func (c *Chain) RegisterCleanup(step *Step, fn func(any)) error {
	if err := c.requireOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.cleanups = append(c.cleanups, cancelEntry{step: step, fn: fn})
	c.mu.Unlock()
	return nil
}

// RegisterFinal registers a finalizer, run exactly once by the last worker
// to exit across the whole chain. Only valid while open.
func (c *Chain) RegisterFinal(fn func()) error {
	if err := c.requireOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.finals = append(c.finals, fn)
	c.mu.Unlock()
	return nil
}

// Close freezes the chain's topology; no further AppendStep/AppendQueue/
// Register* calls are permitted.
func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateOpen {
		return jvlbierrors.NewWrongStateError("chain: Close called on a non-open chain")
	}
	if len(c.queues) != len(c.steps)-1 && len(c.steps) > 0 {
		return jvlbierrors.NewConfigError("chain: queues must be exactly one fewer than steps")
	}
	c.state = stateClosed
	return nil
}

func (c *Chain) inputQueueOf(i int) *queue.Queue[block.TaggedBlock] {
	if i == 0 {
		return nil
	}
	return c.queues[i-1]
}

func (c *Chain) outputQueueOf(i int) *queue.Queue[block.TaggedBlock] {
	if i == len(c.steps)-1 {
		return nil
	}
	return c.queues[i]
}

// Run implements the run protocol of §4.1: every step's user-data cell
// starts absent; queues enable sink-to-source; for each step sink-to-source,
// make user data, publish it, and spawn N workers. A spawn failure marks the
// chain broken and triggers Stop(false).
func (c *Chain) Run() error {
	c.mu.Lock()
	if c.state != stateClosed {
		c.mu.Unlock()
		return jvlbierrors.NewWrongStateError("chain: Run requires a closed, not-yet-run chain")
	}
	c.state = stateRunning
	c.mu.Unlock()

	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		var ud any
		var err error
		if step.MakeUserData != nil {
			ud, err = step.MakeUserData()
			if err != nil {
				_ = c.Stop(false)
				return fmt.Errorf("chain: step %q user-data factory failed: %w", step.Name, err)
			}
		}
		step.publishUserData(ud)
		step.liveCount.Store(int32(step.N))
		c.chainLive += int32(step.N)

		in := c.inputQueueOf(i)
		out := c.outputQueueOf(i)

		for w := 0; w < step.N; w++ {
			fds := make([]int, 2)
			if err := unix.Pipe(fds); err != nil {
				_ = c.Stop(false)
				return fmt.Errorf("chain: step %q failed to create cancel pipe: %w", step.Name, err)
			}
			rfd, wfd := fds[0], fds[1]
			step.registerCancelFD(wfd)

			c.wg.Add(1)
			go c.runWorker(step, in, out, rfd)
		}
	}
	return nil
}

func (c *Chain) runWorker(step *Step, in, out *queue.Queue[block.TaggedBlock], cancelFD int) {
	defer c.wg.Done()
	defer unix.Close(cancelFD)

	defer func() {
		if r := recover(); r != nil {
			Errors.Push(step.Name, fmt.Errorf("worker panic: %v", r))
		}
		c.workerExited(step, out, in)
	}()

	ctx := &StepCtx{
		Step:     step,
		In:       queueAdapter{in},
		Out:      queueAdapter{out},
		UserData: func() any { return step.loadUserData() },
		CancelFD: cancelFD,
	}

	if step.Body == nil {
		return
	}
	if err := step.Body(ctx); err != nil {
		Errors.Push(step.Name, err)
	}
}

type queueAdapter struct {
	q *queue.Queue[block.TaggedBlock]
}

func (a queueAdapter) Push(v block.TaggedBlock) bool {
	if a.q == nil {
		return false
	}
	return a.q.Push(v)
}

func (a queueAdapter) Pop() (block.TaggedBlock, bool) {
	if a.q == nil {
		return block.TaggedBlock{}, false
	}
	return a.q.Pop()
}

func (a queueAdapter) DelayedDisable() {
	if a.q != nil {
		a.q.DelayedDisable()
	}
}

func (a queueAdapter) Disable() {
	if a.q != nil {
		a.q.Disable()
	}
}

// workerExited implements the last-worker-of-a-step teardown: delayed-
// disable the downstream queue, hard-disable the upstream queue, then if
// this was the chain-wide last worker, run every finalizer exactly once.
func (c *Chain) workerExited(step *Step, out, in *queue.Queue[block.TaggedBlock]) {
	if step.liveCount.Add(-1) == 0 {
		if out != nil {
			out.DelayedDisable()
		}
		if in != nil {
			in.Disable()
		}
	}

	c.mu.Lock()
	c.chainLive--
	last := c.chainLive == 0
	c.mu.Unlock()

	if last {
		c.finalOnce.Do(func() {
			for _, fn := range c.finals {
				func() {
					defer func() {
						if r := recover(); r != nil {
							Errors.Push("final", fmt.Errorf("finalizer panic: %v", r))
						}
					}()
					fn()
				}()
			}
			c.mu.Lock()
			if c.state == stateRunning || c.state == stateJoining {
				c.state = stateCancelled
			}
			c.mu.Unlock()
			c.cond.Broadcast()
		})
	}
}

// Communicate locks step, runs fn against its published user-data pointer,
// unlocks, and broadcasts the step's condition variable.
func (c *Chain) Communicate(step *Step, fn func(any)) {
	step.communicate(fn)
}

// Stop is idempotent. It runs every registered cancellation, signals every
// step that cancellation was requested, then either delayed-disables only
// the head queue (gentle) or hard-disables every queue, joins all workers,
// runs every cleanup, and broadcasts the chain condition variable.
func (c *Chain) Stop(gentle bool) error {
	c.mu.Lock()
	if c.state != stateRunning && c.state != stateJoining {
		c.mu.Unlock()
		return nil
	}
	c.state = stateJoining
	c.mu.Unlock()

	for _, ce := range c.cancels {
		func() {
			defer func() {
				if r := recover(); r != nil {
					Errors.Push(ce.step.Name, fmt.Errorf("cancel callback panic: %v", r))
				}
			}()
			c.Communicate(ce.step, ce.fn)
		}()
	}

	for _, step := range c.steps {
		step.wakeAll()
	}

	if gentle {
		if len(c.queues) > 0 {
			c.queues[0].DelayedDisable()
		}
	} else {
		for _, q := range c.queues {
			q.Disable()
		}
	}

	c.wg.Wait()

	for _, ce := range c.cleanups {
		func() {
			defer func() {
				if r := recover(); r != nil {
					Errors.Push(ce.step.Name, fmt.Errorf("cleanup callback panic: %v", r))
				}
			}()
			c.Communicate(ce.step, ce.fn)
		}()
	}

	for i := 0; i < len(c.steps); i++ {
		step := c.steps[i]
		if step.DeleteUserData != nil {
			ud := step.loadUserData()
			step.DeleteUserData(ud)
		}
	}

	c.mu.Lock()
	c.state = stateCancelled
	c.mu.Unlock()
	c.cond.Broadcast()
	return nil
}

// Wait blocks until the chain is no longer running.
func (c *Chain) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.state == stateRunning || c.state == stateJoining {
		c.cond.Wait()
	}
}

// DelayedDisable disables only the head queue, letting the pipeline drain
// naturally; used for the "clean end of recording" call site.
func (c *Chain) DelayedDisable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queues) > 0 {
		c.queues[0].DelayedDisable()
	}
}

// LiveWorkers returns the current chain-wide live worker count.
func (c *Chain) LiveWorkers() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chainLive
}

// Steps exposes the chain's steps in order, for tests and query surfaces.
func (c *Chain) Steps() []*Step {
	return c.steps
}
