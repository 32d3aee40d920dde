package arena_test

import (
	"testing"

	"github.com/haybale/chaff/arena"
)

func TestRent_RejectsNonPositiveSizes(t *testing.T) {
	a := arena.New()
	for _, size := range []int{0, -1, -100} {
		if buf := a.Rent(size); buf != nil {
			t.Errorf("Rent(%d): expected nil, got buffer", size)
		}
	}
}

func TestRent_RejectsAboveCeiling(t *testing.T) {
	a := arena.New()
	if buf := a.Rent(arena.PoolCeiling + 1); buf != nil {
		t.Error("expected nil above pool ceiling")
	}
}

func TestRent_ServesWithinCeiling(t *testing.T) {
	a := arena.New()
	for _, size := range []int{1, 4096, 1 << 20} {
		buf := a.Rent(size)
		if buf == nil {
			t.Fatalf("Rent(%d): expected buffer, got nil", size)
		}
		if got := len(buf.Bytes()); got != size {
			t.Errorf("Rent(%d): expected %d bytes, got %d", size, size, got)
		}
		buf.Release()
	}
}

func TestRent_ReuseAfterRelease(t *testing.T) {
	a := arena.New()

	first := a.Rent(1024)
	if first == nil {
		t.Fatal("expected buffer")
	}
	first.Bytes()[0] = 0xAB
	first.Release()

	// Re-rent; whether or not the same storage comes back, the buffer must
	// be full-sized and writable.
	second := a.Rent(2048)
	if second == nil {
		t.Fatal("expected buffer")
	}
	if len(second.Bytes()) != 2048 {
		t.Errorf("expected 2048 bytes, got %d", len(second.Bytes()))
	}
	second.Release()
}

func TestRelease_Idempotent(t *testing.T) {
	a := arena.New()
	buf := a.Rent(16)
	buf.Release()
	buf.Release() // second release must not panic

	var nilBuf *arena.Buffer
	nilBuf.Release() // nil receiver must not panic
}

func TestClose_NoOp(t *testing.T) {
	a := arena.New()
	if err := a.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The shared pool survives any arena instance.
	if buf := a.Rent(64); buf == nil {
		t.Fatal("expected rental to work after Close")
	}
}
