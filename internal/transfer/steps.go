package transfer

import (
	"context"
	"io"
	"time"

	"golang.org/x/sys/unix"

	"github.com/five82/jvlbi/internal/block"
	"github.com/five82/jvlbi/internal/chain"
)

// cancelled returns a channel closed the moment fd's write end is closed by
// Chain.Stop's wake-up, per the cancel-pipe protocol documented on StepCtx.
func cancelled(fd int) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		var buf [1]byte
		unix.Read(fd, buf[:])
	}()
	return ch
}

// idleUntilRunning blocks a source step until the runtime transitions to
// running or cancellation is requested, returning false if the step should
// exit.
func idleUntilRunning(rt *Runtime, done <-chan struct{}) bool {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for !rt.Running() {
		select {
		case <-done:
			return false
		case <-ticker.C:
		}
	}
	return true
}

// readerSourceStep builds a step that pulls fixed-size blocks from read
// (e.g. a VBS handle, a capture board's data path, or a network transport)
// and pushes them downstream, honoring the runtime's on/off gating and
// stopping cleanly on EOF or cancellation.
func readerSourceStep(name string, pool *block.Pool, rt *Runtime, read func(buf []byte) (int, error)) chain.Step {
	return chain.Step{
		Name: name,
		N:    1,
		Body: func(ctx *chain.StepCtx) error {
			done := cancelled(ctx.CancelFD)
			for {
				select {
				case <-done:
					return nil
				default:
				}
				if !idleUntilRunning(rt, done) {
					return nil
				}

				b, err := pool.Get(context.Background())
				if err != nil {
					return nil
				}
				n, rerr := read(b.Bytes()[:pool.ElemSize()])
				if n > 0 {
					b.Length = n
					if !ctx.Out.Push(block.TaggedBlock{Block: b}) {
						b.Release()
						return nil
					}
				} else {
					b.Release()
				}
				if rerr != nil {
					if rerr == io.EOF {
						return nil
					}
					return rerr
				}
			}
		},
	}
}

// fillSourceStep generates a deterministic incrementing fill pattern,
// standing in for a disconnected or absent data source (fill2net's role).
func fillSourceStep(name string, pool *block.Pool, rt *Runtime) chain.Step {
	var counter byte
	return chain.Step{
		Name: name,
		N:    1,
		Body: func(ctx *chain.StepCtx) error {
			done := cancelled(ctx.CancelFD)
			for {
				select {
				case <-done:
					return nil
				default:
				}
				if !idleUntilRunning(rt, done) {
					return nil
				}

				b, err := pool.Get(context.Background())
				if err != nil {
					return nil
				}
				buf := b.Bytes()[:pool.ElemSize()]
				for i := range buf {
					buf[i] = counter
					counter++
				}
				b.Length = len(buf)
				if !ctx.Out.Push(block.TaggedBlock{Block: b}) {
					b.Release()
					return nil
				}
			}
		},
	}
}

// writerSinkStep builds a step that drains blocks and hands their payload to
// write (a disk array, a network transport, or a plain file), releasing the
// block afterward regardless of outcome and recording the bytes moved on rt
// for the query command surface (§6).
func writerSinkStep(name string, rt *Runtime, write func(data []byte) error) chain.Step {
	return chain.Step{
		Name: name,
		N:    1,
		Body: func(ctx *chain.StepCtx) error {
			for {
				tb, ok := ctx.In.Pop()
				if !ok {
					return nil
				}
				n := tb.Block.Length
				err := write(tb.Block.Bytes())
				tb.Block.Release()
				if err != nil {
					return err
				}
				rt.addProgress(n)
			}
		},
	}
}

// discardSinkStep builds a step that simply releases every block it
// receives, used where a mode's downstream effect already happened in the
// source (e.g. a disk array's own Record bookkeeping).
func discardSinkStep(name string) chain.Step {
	return chain.Step{
		Name: name,
		N:    1,
		Body: func(ctx *chain.StepCtx) error {
			for {
				tb, ok := ctx.In.Pop()
				if !ok {
					return nil
				}
				tb.Block.Release()
			}
		},
	}
}
