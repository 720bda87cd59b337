package core

import "testing"

func TestTurnLimiter_Exceeded(t *testing.T) {
	tl := NewTurnLimiter(2)

	if err := tl.Increment(); err != nil {
		t.Fatalf("unexpected error on turn 1: %v", err)
	}
	if err := tl.Increment(); err != nil {
		t.Fatalf("unexpected error on turn 2: %v", err)
	}
	if got := tl.Remaining(); got != 0 {
		t.Errorf("expected 0 remaining, got %d", got)
	}
	if err := tl.Increment(); err == nil {
		t.Error("expected error once the limit is exceeded")
	}
	if got := tl.Count(); got != 3 {
		t.Errorf("expected count 3, got %d", got)
	}
}

func TestTurnLimiter_Unlimited(t *testing.T) {
	tl := NewTurnLimiter(0)

	for i := 0; i < 100; i++ {
		if err := tl.Increment(); err != nil {
			t.Fatalf("unexpected error on turn %d: %v", i+1, err)
		}
	}
	if got := tl.Remaining(); got != -1 {
		t.Errorf("expected -1 for unlimited, got %d", got)
	}
}

func TestTurnLimiter_Reset(t *testing.T) {
	tl := NewTurnLimiter(1)

	if err := tl.Increment(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tl.Increment(); err == nil {
		t.Fatal("expected error past the limit")
	}

	tl.Reset()
	if err := tl.Increment(); err != nil {
		t.Errorf("expected a fresh budget after reset, got %v", err)
	}
}
