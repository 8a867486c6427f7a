package services_test

import (
	"errors"
	"strings"
	"testing"

	"modmatch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUnavailable, "rerank", "llm", "request failed", base)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"rerank", "llm", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureOutcomeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Outcome
	}{
		{"validation", services.Wrap(services.ErrValidation, "batch", "scan", "not a directory", nil), services.OutcomeSkipped},
		{"not found", services.Wrap(services.ErrNotFound, "batch", "scan", "missing", nil), services.OutcomeSkipped},
		{"transient", services.Wrap(services.ErrTransient, "batch", "read", "io", errors.New("eio")), services.OutcomeFailed},
		{"nil", nil, services.OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.FailureOutcome(tt.err); got != tt.want {
				t.Fatalf("FailureOutcome() = %s, want %s", got, tt.want)
			}
		})
	}
}
