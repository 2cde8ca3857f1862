package errors

import (
	"context"
	"fmt"
	"testing"
)

func TestRouterErrorIsMatchesByCode(t *testing.T) {
	err := QuoteFailed(1, "STX", "CHA", fmt.Errorf("boom"))
	if !Is(err, ErrQuoteFailed) {
		t.Fatalf("expected QuoteFailed to match ErrQuoteFailed")
	}
	if Is(err, ErrNoValidRoute) {
		t.Fatalf("QuoteFailed must not match ErrNoValidRoute")
	}

	wrapped := Wrap(err, "evaluate")
	if !Is(wrapped, ErrQuoteFailed) {
		t.Fatalf("expected wrapped error to match by code")
	}
	if CodeOf(wrapped) != ErrCodeQuoteFailed {
		t.Errorf("expected code %s, got %s", ErrCodeQuoteFailed, CodeOf(wrapped))
	}
}

func TestRouterErrorUnwrap(t *testing.T) {
	err := ContextCanceled(context.DeadlineExceeded)
	if !Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}
	if got := err.Error(); got != "CONTEXT_CANCELED: context canceled: context deadline exceeded" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestConstructorsDoNotMutateSentinels(t *testing.T) {
	_ = InvalidPath("A", "C", 1)
	if ErrInvalidPath.Details != nil {
		t.Fatalf("sentinel details mutated: %v", ErrInvalidPath.Details)
	}

	err := InvalidPath("A", "C", 1)
	if err.Details["max_hops"] != 1 {
		t.Errorf("expected max_hops detail 1, got %v", err.Details["max_hops"])
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if code := CodeOf(fmt.Errorf("plain")); code != "" {
		t.Errorf("expected empty code, got %q", code)
	}
}
