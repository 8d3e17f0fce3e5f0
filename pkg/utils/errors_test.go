package utils

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetryStopsAfterSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, 3)
	if err != nil {
		t.Fatalf("WithRetry() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("still broken")
	err := WithRetry(func() error {
		calls++
		return sentinel
	}, 3)
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithRetry() error = %v, want %v", err, sentinel)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWithRetryNeverRetriesCancellation(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		return context.Canceled
	}, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("WithRetry() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (cancellation must not be retried)", calls)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewIOError("failed to persist entry", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
	if got := GetErrorType(err); got != ErrorTypeIO {
		t.Fatalf("GetErrorType() = %s, want %s", got, ErrorTypeIO)
	}
}

func TestWrapErrorKeepsType(t *testing.T) {
	inner := NewOCRError("page recognition failed", nil)
	wrapped := WrapError(inner, "", "job aborted")
	if got := GetErrorType(wrapped); got != ErrorTypeOCR {
		t.Fatalf("GetErrorType() = %s, want original type %s preserved", got, ErrorTypeOCR)
	}
	if forced := WrapError(inner, ErrorTypeSystem, "job aborted"); forced.Type != ErrorTypeSystem {
		t.Fatalf("explicit type not applied, got %s", forced.Type)
	}
}
