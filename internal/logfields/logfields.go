package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyEntity     = "entity"
	KeyKind       = "kind"
	KeyKey        = "key"
	KeyOutcome    = "outcome"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Entity(name string) slog.Attr    { return slog.String(KeyEntity, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
