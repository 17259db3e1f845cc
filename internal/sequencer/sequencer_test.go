package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunExecutesInOrderWithDelay(t *testing.T) {
	const delay = 50 * time.Millisecond

	var order []int
	var stamps []time.Time
	actions := make([]Action, 0, 3)
	for i := 0; i < 3; i++ {
		i := i
		actions = append(actions, func(context.Context) error {
			order = append(order, i)
			stamps = append(stamps, time.Now())
			return nil
		})
	}

	seq := New(delay, nil)
	start := time.Now()
	if err := seq.Run(context.Background(), actions); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("actions ran out of order: %v", order)
		}
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < delay {
			t.Fatalf("gap between action %d and %d was %v, want >= %v", i-1, i, gap, delay)
		}
	}
	// No trailing delay after the last action.
	if elapsed := time.Since(start); elapsed > 3*delay {
		t.Fatalf("run took %v, suggests a wait after the final action", elapsed)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	var ran []string
	actions := []Action{
		func(context.Context) error { ran = append(ran, "a"); return nil },
		func(context.Context) error { ran = append(ran, "b"); return errors.New("boom") },
		func(context.Context) error { ran = append(ran, "c"); return nil },
	}

	seq := New(0, nil)
	if err := seq.Run(context.Background(), actions); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ran) != 3 {
		t.Fatalf("a failed action aborted the sequence: %v", ran)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ran int
	actions := []Action{
		func(context.Context) error { ran++; cancel(); return nil },
		func(context.Context) error { ran++; return nil },
	}

	seq := New(10*time.Millisecond, nil)
	err := seq.Run(ctx, actions)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran != 1 {
		t.Fatalf("expected run to stop after cancellation, ran %d actions", ran)
	}
}

func TestRunEmptyActionList(t *testing.T) {
	seq := New(time.Second, nil)
	if err := seq.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run with no actions: %v", err)
	}
}
