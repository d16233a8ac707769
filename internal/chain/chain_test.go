package chain

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/jvlbi/internal/block"
)

func TestChainLifecycleProducerTwoConsumers(t *testing.T) {
	c := New()

	var produced int32
	producer, err := c.AppendStep(Step{
		Name: "producer",
		N:    1,
		Body: func(ctx *StepCtx) error {
			for i := 0; i < 100; i++ {
				ctx.Out.Push(block.TaggedBlock{Tag: i})
			}
			ctx.Out.DelayedDisable()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("AppendStep producer: %v", err)
	}

	if _, err := c.AppendQueue(4); err != nil {
		t.Fatalf("AppendQueue: %v", err)
	}

	var consumed int32
	_, err = c.AppendStep(Step{
		Name: "consumer",
		N:    2,
		Body: func(ctx *StepCtx) error {
			for {
				_, ok := ctx.In.Pop()
				if !ok {
					return nil
				}
				atomic.AddInt32(&consumed, 1)
			}
		},
	})
	if err != nil {
		t.Fatalf("AppendStep consumer: %v", err)
	}

	var finalCalls int32
	if err := c.RegisterFinal(func() { atomic.AddInt32(&finalCalls, 1) }); err != nil {
		t.Fatalf("RegisterFinal: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("chain did not drain within timeout")
	}

	if got := atomic.LoadInt32(&consumed); got != 100 {
		t.Errorf("expected all 100 units consumed, got %d", got)
	}
	if got := atomic.LoadInt32(&finalCalls); got != 1 {
		t.Errorf("expected exactly one finalizer call, got %d", got)
	}
	_ = producer
}

func TestUserDataTearsDownSourceToSink(t *testing.T) {
	c := New()

	var order []string
	var mu sync.Mutex
	record := func(name string) func(any) {
		return func(any) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	producer, err := c.AppendStep(Step{
		Name:           "producer",
		N:              1,
		MakeUserData:   func() (any, error) { return "producer", nil },
		DeleteUserData: record("producer"),
		Body: func(ctx *StepCtx) error {
			ctx.Out.Push(block.TaggedBlock{Tag: 1})
			ctx.Out.DelayedDisable()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("AppendStep producer: %v", err)
	}

	if _, err := c.AppendQueue(4); err != nil {
		t.Fatalf("AppendQueue: %v", err)
	}

	_, err = c.AppendStep(Step{
		Name:           "consumer",
		N:              1,
		MakeUserData:   func() (any, error) { return "consumer", nil },
		DeleteUserData: record("consumer"),
		Body: func(ctx *StepCtx) error {
			for {
				if _, ok := ctx.In.Pop(); !ok {
					return nil
				}
			}
		},
	})
	if err != nil {
		t.Fatalf("AppendStep consumer: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("chain did not drain within timeout")
	}

	mu.Lock()
	defer mu.Unlock()
	if want := []string{"producer", "consumer"}; !equalStrings(order, want) {
		t.Errorf("expected user data torn down source-to-sink, got %v", order)
	}
	_ = producer
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestChainStopIsIdempotent(t *testing.T) {
	c := New()
	_, err := c.AppendStep(Step{
		Name: "noop",
		N:    1,
		Body: func(ctx *StepCtx) error {
			<-time.After(10 * time.Millisecond)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("AppendStep: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if err := c.Stop(false); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := c.Stop(false); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestChainRejectsMutationAfterClose(t *testing.T) {
	c := New()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.AppendStep(Step{Name: "late", N: 1}); err == nil {
		t.Fatal("expected AppendStep after Close to fail")
	}
}

func TestLiveWorkersMatchesConfiguredCount(t *testing.T) {
	c := New()
	blockCh := make(chan struct{})
	_, err := c.AppendStep(Step{
		Name: "blocked",
		N:    3,
		Body: func(ctx *StepCtx) error {
			<-blockCh
			return nil
		},
	})
	if err != nil {
		t.Fatalf("AppendStep: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if got := c.LiveWorkers(); got != 3 {
		t.Errorf("expected 3 live workers, got %d", got)
	}

	close(blockCh)
	c.Wait()
}
