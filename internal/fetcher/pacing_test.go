package fetcher

import (
	"testing"
	"time"
)

func TestJitterBounds(t *testing.T) {
	p := NewPacer()
	min, max := 10*time.Millisecond, 50*time.Millisecond

	for i := 0; i < 100; i++ {
		d := p.Jitter(min, max)
		if d < min || d > max {
			t.Fatalf("jitter out of bounds: %v", d)
		}
	}
}

func TestJitterDegenerateRange(t *testing.T) {
	p := NewPacer()

	if d := p.Jitter(time.Second, time.Second); d != time.Second {
		t.Errorf("equal bounds should return min, got %v", d)
	}
	if d := p.Jitter(2*time.Second, time.Second); d != 2*time.Second {
		t.Errorf("inverted bounds should return min, got %v", d)
	}
	if d := p.Jitter(0, 0); d != 0 {
		t.Errorf("zero bounds should return zero, got %v", d)
	}
}
