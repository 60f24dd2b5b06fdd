// Package errors defines the typed error taxonomy used across the
// prompt-improvement engine (spec.md §7), generalizing the
// types.MCPError{Code, Message, Details} shape to carry the metadata block
// every engine error must report.
package errors

import "fmt"

// Kind is the closed set of error kinds (spec.md §4.1, §7).
type Kind string

const (
	KindInput            Kind = "InputError"
	KindTimeout          Kind = "Timeout"
	KindConnection       Kind = "ConnectionError"
	KindModelNotFound    Kind = "ModelNotFound"
	KindSchema           Kind = "SchemaError"
	KindNonJSONOutput    Kind = "NonJsonOutput"
	KindQualityGate      Kind = "QualityGateFailure"
	KindUnauthorized     Kind = "Unauthorized"
	KindRateLimited      Kind = "RateLimited"
	KindInternal         Kind = "InternalError"
	KindCancelled        Kind = "Cancelled"
)

// Meta is the metadata block carried by every engine error (spec.md §4.1).
type Meta struct {
	Attempt          int
	UsedRepair       bool
	UsedExtraction   bool
	LatencyMs        int64
	ExtractionMethod string
	ValidatorErr     string
}

// Error is the engine's typed error value. It wraps an underlying cause
// (if any) and is comparable by Kind via Is.
type Error struct {
	Kind    Kind
	Message string
	Meta    Meta
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, &Error{Kind: K}) comparisons by Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithMeta returns a copy of e with Meta set.
func (e *Error) WithMeta(m Meta) *Error {
	cp := *e
	cp.Meta = m
	return &cp
}

// fallbackWorthy is the exact closed set spec.md §4.1 enumerates as
// triggering a fallback-model reissue. Timeout, ConnectionError, and
// RateLimited are deliberately excluded (DESIGN.md Open Question 2).
var fallbackWorthy = map[Kind]bool{
	KindModelNotFound: true,
	KindNonJSONOutput: true,
	KindSchema:        true,
	KindQualityGate:   true,
}

// IsFallbackWorthy reports whether an error of this kind should trigger a
// fallback-model reissue (spec.md §4.1).
func IsFallbackWorthy(kind Kind) bool {
	return fallbackWorthy[kind]
}

// ContainsMetaContent is a sentinel condition folded into fallback-worthy
// classification by callers that detect leaked meta content distinct from
// a structural QualityGateFailure (spec.md §4.1 "contains meta content").
const ContainsMetaContent Kind = KindQualityGate
