package queue

import (
	"testing"
	"time"
)

func TestPushPopRoundTrip(t *testing.T) {
	q := New[int](4)
	if ok := q.Push(1); !ok {
		t.Fatal("expected push to succeed")
	}
	v, ok := q.Pop()
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%d, %v)", v, ok)
	}
}

func TestDelayedDisableDrainsBuffer(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 3; i++ {
		if !q.Push(i) {
			t.Fatalf("expected push %d to succeed", i)
		}
	}
	q.DelayedDisable()

	if q.Push(99) {
		t.Fatal("expected push after DelayedDisable to fail")
	}

	for i := 0; i < 3; i++ {
		v, ok := q.Pop()
		if !ok || v != i {
			t.Fatalf("expected (%d, true), got (%d, %v)", i, v, ok)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatal("expected Pop to report closed once the buffer is drained")
	}
}

func TestDisableUnblocksImmediately(t *testing.T) {
	q := New[int](0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Pop(); ok {
			t.Error("expected Pop to report closed after Disable")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Disable()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Disable")
	}
}

func TestDisableIsIdempotent(t *testing.T) {
	q := New[int](1)
	q.Disable()
	q.Disable()
}

func TestNeverReEnables(t *testing.T) {
	q := New[int](1)
	q.DelayedDisable()
	q.Disable()
	if q.Push(1) {
		t.Fatal("expected push to fail once disabled")
	}
}
