// Package diag collects per-entity conversion diagnostics.
//
// Diagnostics are operator-facing notes accumulated while a help document is
// assembled. They never abort a conversion; fatal conditions are errors
// (see internal/faults). The line format matches what operators grep for:
//
//	<entity> - NOTE: see also contains duplicates
package diag

import (
	"context"
	"fmt"
	"log/slog"
)

// Severity marks how loud a diagnostic is.
type Severity int

const (
	Debug Severity = iota
	Note
	Info
	Error
)

// String returns the operator-facing marker.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "DBG"
	case Note:
		return "NOTE"
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// level maps a Severity onto a slog level for the diagnostics stream.
func (s Severity) level() slog.Level {
	switch s {
	case Debug:
		return slog.LevelDebug
	case Note, Info:
		return slog.LevelInfo
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Diagnostic is one human-readable message about an entity's conversion.
type Diagnostic struct {
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// List accumulates diagnostics in emission order.
type List struct {
	items []Diagnostic
}

// Add records a diagnostic.
func (l *List) Add(sev Severity, format string, args ...any) {
	l.items = append(l.items, Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Merge appends all diagnostics from other.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// Items returns the accumulated diagnostics in order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Len returns the number of diagnostics.
func (l *List) Len() int { return len(l.items) }

// Has reports whether any diagnostic with the given severity was recorded.
func (l *List) Has(sev Severity) bool {
	for _, d := range l.items {
		if d.Severity == sev {
			return true
		}
	}
	return false
}

// Emit writes every diagnostic to the logger, keyed by entity name.
func (l *List) Emit(logger *slog.Logger, entity string) {
	for _, d := range l.items {
		logger.Log(context.Background(), d.Severity.level(),
			fmt.Sprintf("%s - %s: %s", entity, d.Severity, d.Message))
	}
}
