package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocID      = "doc_id"
	KeySidebar    = "sidebar"
	KeyBuildID    = "build_id"
	KeyGeneration = "generation"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCount      = "count"
	KeyAddr       = "addr"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyOp         = "op"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DocID(id string) slog.Attr       { return slog.String(KeyDocID, id) }
func Sidebar(name string) slog.Attr   { return slog.String(KeySidebar, name) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Generation(g uint64) slog.Attr   { return slog.Uint64(KeyGeneration, g) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Op(name string) slog.Attr        { return slog.String(KeyOp, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
