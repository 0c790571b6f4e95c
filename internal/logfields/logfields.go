package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeyIntent     = "intent"
	KeyEntity     = "entity"
	KeyLanguage   = "language"
	KeyVersion    = "version"
	KeyGeneration = "generation"
	KeySnapshotID = "snapshot_id"
	KeyTrigger    = "trigger"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRequestID  = "request_id"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Intent(i string) slog.Attr        { return slog.String(KeyIntent, i) }
func Entity(id string) slog.Attr       { return slog.String(KeyEntity, id) }
func Language(tag string) slog.Attr    { return slog.String(KeyLanguage, tag) }
func Version(v string) slog.Attr       { return slog.String(KeyVersion, v) }
func Generation(g uint64) slog.Attr    { return slog.Uint64(KeyGeneration, g) }
func SnapshotID(id string) slog.Attr   { return slog.String(KeySnapshotID, id) }
func Trigger(t string) slog.Attr       { return slog.String(KeyTrigger, t) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
