package classification

import (
	"context"
	"errors"
	"testing"
)

func TestSuccessOutcome(t *testing.T) {
	outcome := Success("sadness", 0.8)
	if !outcome.OK() {
		t.Fatal("expected success")
	}
	result, ok := outcome.Result()
	if !ok || result.Label != "sadness" || result.Confidence != 0.8 {
		t.Fatalf("unexpected result: %+v ok=%v", result, ok)
	}
	if outcome.Err() != nil || outcome.Reason() != "" {
		t.Fatalf("success must not carry a failure: %v %q", outcome.Err(), outcome.Reason())
	}
}

func TestFailureOutcomeWrapsCause(t *testing.T) {
	outcome := Failure(ReasonTimeout, context.DeadlineExceeded)
	if outcome.OK() {
		t.Fatal("expected failure")
	}
	if _, ok := outcome.Result(); ok {
		t.Fatal("failure must not expose a result")
	}
	if outcome.Reason() != ReasonTimeout {
		t.Fatalf("unexpected reason %q", outcome.Reason())
	}
	if !errors.Is(outcome.Err(), context.DeadlineExceeded) {
		t.Fatalf("expected cause to be wrapped, got %v", outcome.Err())
	}
}

func TestFailureDefaultsToUnavailable(t *testing.T) {
	outcome := Failure("", nil)
	if outcome.Reason() != ReasonUnavailable {
		t.Fatalf("expected unavailable, got %q", outcome.Reason())
	}
	if outcome.Err() == nil {
		t.Fatal("expected error for failure")
	}
}
