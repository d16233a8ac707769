package block

import (
	"context"
	"testing"
	"time"
)

func TestPoolGetReleaseRecyclesBackingArray(t *testing.T) {
	p := NewPool(64, 1)
	ctx := context.Background()

	b1, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b1.Length = 64
	copy(b1.Bytes(), []byte("hello"))
	b1.Release()

	b2, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b2.Cap() != 64 {
		t.Fatalf("expected recycled capacity 64, got %d", b2.Cap())
	}
	if b2.Length != 0 {
		t.Fatalf("expected fresh block length 0, got %d", b2.Length)
	}
}

func TestPoolBoundsOutstanding(t *testing.T) {
	p := NewPool(8, 1)
	ctx := context.Background()

	b, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if _, ok := p.TryGet(); ok {
		t.Fatal("expected TryGet to fail while the only permit is outstanding")
	}

	b.Release()

	if _, ok := p.TryGet(); !ok {
		t.Fatal("expected TryGet to succeed after release")
	}
}

func TestPoolGetRespectsContextCancellation(t *testing.T) {
	p := NewPool(8, 1)
	ctx := context.Background()
	b, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer b.Release()

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	if _, err := p.Get(cctx); err == nil {
		t.Fatal("expected Get to fail once context deadline passes with no free permit")
	}
}

func TestBlockRetainDefersRelease(t *testing.T) {
	p := NewPool(8, 1)
	b, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b.Retain()

	b.Release()
	if _, ok := p.TryGet(); ok {
		t.Fatal("expected pool to remain exhausted after only one of two releases")
	}

	b.Release()
	if _, ok := p.TryGet(); !ok {
		t.Fatal("expected pool to free the permit after the final release")
	}
}
