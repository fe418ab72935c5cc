package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySession    = "session"
	KeyGeneration = "generation"
	KeyState      = "state"
	KeyMode       = "mode"
	KeyEntry      = "entry"
	KeyExpose     = "expose"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyOutputDir  = "output_dir"
	KeyModule     = "module"
	KeyDurationMS = "duration_ms"
	KeyDelay      = "delay"
	KeyBytes      = "bytes"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Session(id string) slog.Attr      { return slog.String(KeySession, id) }
func Generation(n int) slog.Attr       { return slog.Int(KeyGeneration, n) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Entry(p string) slog.Attr         { return slog.String(KeyEntry, p) }
func Expose(name string) slog.Attr     { return slog.String(KeyExpose, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func OutputDir(d string) slog.Attr     { return slog.String(KeyOutputDir, d) }
func Module(m string) slog.Attr        { return slog.String(KeyModule, m) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Delay(d time.Duration) slog.Attr  { return slog.Duration(KeyDelay, d) }
func Bytes(n int64) slog.Attr          { return slog.Int64(KeyBytes, n) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func Addr(addr string) slog.Attr       { return slog.String(KeyAddr, addr) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
