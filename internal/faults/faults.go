// Package faults provides classified errors for the conversion pipeline.
//
// Errors carry a category and a severity so the batch runner can decide
// whether a failure is fatal for the current entity (conversion stops, the
// run continues) or merely degrades the produced document.
package faults

import (
	"errors"
	"fmt"
)

// Category classifies an error for routing and reporting.
type Category string

const (
	// CategoryMarkup covers structural violations in the parsed markup tree.
	CategoryMarkup Category = "markup"
	// CategoryCrossRef covers see-also keys with no match in the metadata index.
	CategoryCrossRef Category = "crossref"
	// CategorySection covers missing or degenerate document sections.
	CategorySection Category = "section"
	// CategoryCatalog covers malformed entity catalog input.
	CategoryCatalog Category = "catalog"
	// CategoryStorage covers metadata index storage failures.
	CategoryStorage Category = "storage"
	// CategoryConfig covers user-facing configuration errors.
	CategoryConfig Category = "config"
)

// Severity indicates the impact of an error.
type Severity string

const (
	// SeverityFatal stops conversion of the current entity.
	SeverityFatal Severity = "fatal"
	// SeverityWarning continues with degraded output.
	SeverityWarning Severity = "warning"
	// SeverityInfo is informational only.
	SeverityInfo Severity = "info"
)

// Classified is an error with category, severity, and optional cause.
type Classified struct {
	category Category
	severity Severity
	message  string
	cause    error
}

func (e *Classified) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

// Unwrap implements error unwrapping.
func (e *Classified) Unwrap() error { return e.cause }

// Category returns the error category.
func (e *Classified) Category() Category { return e.category }

// Severity returns the error severity.
func (e *Classified) Severity() Severity { return e.severity }

// Message returns the bare message without classification prefix.
func (e *Classified) Message() string { return e.message }

// New creates a classified error.
func New(category Category, severity Severity, format string, args ...any) *Classified {
	return &Classified{
		category: category,
		severity: severity,
		message:  fmt.Sprintf(format, args...),
	}
}

// Wrap classifies an existing error.
func Wrap(err error, category Category, severity Severity, message string) *Classified {
	return &Classified{
		category: category,
		severity: severity,
		message:  message,
		cause:    err,
	}
}

// AsClassified extracts a Classified error from an error chain.
func AsClassified(err error) (*Classified, bool) {
	var ce *Classified
	ok := errors.As(err, &ce)
	return ce, ok
}

// MalformedBlockError reports a markup node that violates the shape the
// normalizer expects for its kind. It is fatal for the current entity:
// shapes with no safe rendering are never silently coerced.
type MalformedBlockError struct {
	// NodeKind is the markup node kind (e.g. "Blockquote", "List").
	NodeKind string
	// Rendered is the plain-text rendering of the offending node.
	Rendered string
	// Reason states the violated expectation.
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed %s block: %s: %q", e.NodeKind, e.Reason, e.Rendered)
}

// Malformed builds a MalformedBlockError.
func Malformed(nodeKind, reason, rendered string) *MalformedBlockError {
	return &MalformedBlockError{NodeKind: nodeKind, Rendered: rendered, Reason: reason}
}

// IsMalformed reports whether err is, or wraps, a MalformedBlockError.
func IsMalformed(err error) bool {
	var mb *MalformedBlockError
	return errors.As(err, &mb)
}

// AsMalformed extracts a MalformedBlockError from an error chain.
func AsMalformed(err error) (*MalformedBlockError, bool) {
	var mb *MalformedBlockError
	ok := errors.As(err, &mb)
	return mb, ok
}
