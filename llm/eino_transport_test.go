package llm

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyCallErrorTimeout(t *testing.T) {
	err := classifyCallError(context.DeadlineExceeded)
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != ErrTimeout {
		t.Fatalf("expected Timeout TransportError, got %v", err)
	}
}

func TestClassifyCallErrorCancelled(t *testing.T) {
	err := classifyCallError(context.Canceled)
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != ErrCancelled {
		t.Fatalf("expected Cancelled TransportError, got %v", err)
	}
}

func TestClassifyCallErrorRateLimited(t *testing.T) {
	err := classifyCallError(errors.New("429 rate limit exceeded"))
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != ErrRateLimited {
		t.Fatalf("expected RateLimited TransportError, got %v", err)
	}
}

func TestClassifyConstructionErrorModelNotFound(t *testing.T) {
	err := classifyConstructionError(errors.New("model not found: gpt-bogus"))
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != ErrModelNotFound {
		t.Fatalf("expected ModelNotFound TransportError, got %v", err)
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	te := &TransportError{Kind: ErrConnection, Err: cause}
	if !errors.Is(te, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestValidateProvider(t *testing.T) {
	if _, err := ValidateProvider("openai"); err != nil {
		t.Fatalf("expected openai to validate, got %v", err)
	}
	if _, err := ValidateProvider("bogus"); err == nil {
		t.Fatal("expected bogus provider to fail validation")
	}
}
