package ir

import "fmt"

// StructuralError means the upstream-provided source-form model is malformed
// in a way the pipeline cannot proceed from. It aborts the run before
// analysis; everything recoverable is modeled as an Issue instead.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "structural model error: " + e.Msg
}

func Structuralf(format string, args ...interface{}) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// CollisionError means two instructions in one program produced the same
// 8-byte discriminator. Fatal once detected: the program could not dispatch.
type CollisionError struct {
	A, B          string
	Discriminator [8]byte
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("discriminator collision: instructions %q and %q both map to %x", e.A, e.B, e.Discriminator)
}

// IssueKind classifies recoverable per-instruction findings.
type IssueKind string

const (
	// IssueUnresolved marks a body fragment a rewrite pass recognized the
	// shape of but could not lower; an inert marker was left in the body.
	IssueUnresolved IssueKind = "unresolved_pattern"

	// IssueLayoutFallback marks a field whose size was conservatively
	// estimated. Not an error; surfaced for downstream review.
	IssueLayoutFallback IssueKind = "layout_fallback"

	// IssueValidationGap marks a source constraint shape not covered by the
	// supported validation variants. No guard was generated for it.
	IssueValidationGap IssueKind = "validation_gap"
)

// Issue is a recoverable, per-instruction finding reported alongside
// otherwise-successful output.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail"`
}
