package chain

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/five82/jvlbi/internal/block"
)

// StepCtx is handed to a worker's Body function; it exposes the step's
// input/output queues and user data, plus the per-worker cancel-pipe
// wake-up primitive described in §9's redesign note (replacing SIGUSR1 with
// a private, non-blocking wake-up per worker).
type StepCtx struct {
	Step     *Step
	In       stepQueue
	Out      stepQueue
	UserData func() any
	// CancelFD is the read end of this worker's cancel-pipe; a worker
	// blocked on inner I/O should select/poll on it alongside the data
	// path so Communicate-driven cancellation can wake it.
	CancelFD int
}

// Step is one stage of a Chain: a name, a worker count, user-data lifecycle
// hooks, and the function every worker goroutine runs.
type Step struct {
	Name           string
	N              int
	MakeUserData   func() (any, error)
	DeleteUserData func(any)
	Body           func(ctx *StepCtx) error

	mu        sync.Mutex
	cond      *sync.Cond
	userData  atomic.Pointer[any]
	liveCount atomic.Int32
	cancelFDs []int // write ends, one per spawned worker, closed to wake it
}

func newStep(s Step) *Step {
	st := s
	st.cond = sync.NewCond(&st.mu)
	return &st
}

// communicate runs fn against the published user-data pointer with the
// step's lock held, then broadcasts the step's condition variable. This is
// the only sanctioned mutator of step user data.
func (s *Step) communicate(fn func(any)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.cond.Broadcast()

	p := s.userData.Load()
	if p == nil {
		return
	}
	fn(*p)
}

func (s *Step) publishUserData(v any) {
	s.userData.Store(&v)
}

func (s *Step) loadUserData() any {
	p := s.userData.Load()
	if p == nil {
		return nil
	}
	return *p
}

// registerCancelFD records a worker's cancel-pipe write end so Stop can
// wake it; called once per spawned worker goroutine.
func (s *Step) registerCancelFD(wfd int) {
	s.mu.Lock()
	s.cancelFDs = append(s.cancelFDs, wfd)
	s.mu.Unlock()
}

// wakeAll closes every registered cancel-pipe write end, which a blocked
// worker's poll/select on its read end observes as readiness.
func (s *Step) wakeAll() {
	s.mu.Lock()
	fds := s.cancelFDs
	s.cancelFDs = nil
	s.mu.Unlock()
	for _, fd := range fds {
		_ = unix.Close(fd)
	}
}

// stepQueue is the type-erased view of an internal/queue.Queue[block.TaggedBlock]
// a step's worker uses; kept as a small interface here so Step doesn't need
// to import queue's generic instantiation directly at every call site.
type stepQueue interface {
	Push(block.TaggedBlock) bool
	Pop() (block.TaggedBlock, bool)
	DelayedDisable()
	Disable()
}
