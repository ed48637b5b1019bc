package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func init() {
	// Tests should not spend real time in backoff sleeps.
	sleep = func(time.Duration) {}
}

func TestDoAlwaysFailingInvokedExactly(t *testing.T) {
	calls := 0
	ok, err := Do(context.Background(), 3, func() (bool, error) {
		calls++
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected overall failure")
	}
	if calls != 4 {
		t.Fatalf("expected retries+1 = 4 calls, got %d", calls)
	}
}

func TestDoStopsAfterFirstSuccess(t *testing.T) {
	calls := 0
	ok, err := Do(context.Background(), 5, func() (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected success")
	}
	if calls != 3 {
		t.Fatalf("action must not be called after it succeeds, got %d calls", calls)
	}
}

func TestDoImmediateSuccessSkipsBackoff(t *testing.T) {
	calls := 0
	ok, err := Do(context.Background(), 0, func() (bool, error) {
		calls++
		return true, nil
	})
	if err != nil || !ok || calls != 1 {
		t.Fatalf("expected single successful call, ok=%v err=%v calls=%d", ok, err, calls)
	}
}

func TestDoPropagatesErrorWithoutRetrying(t *testing.T) {
	wantErr := errors.New("element detached")
	calls := 0
	ok, err := Do(context.Background(), 5, func() (bool, error) {
		calls++
		return false, wantErr
	})
	if ok {
		t.Fatalf("expected failure")
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("errors are not retryable signals, expected 1 call, got %d", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	ok, err := Do(ctx, 5, func() (bool, error) {
		calls++
		return false, nil
	})
	if ok {
		t.Fatalf("expected failure")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("cancellation must stop the loop at the backoff, got %d calls", calls)
	}
}
