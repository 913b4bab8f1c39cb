package logger

import (
	"encoding/hex"
	"log/slog"
)

// Structured field keys used across the daemon.
const (
	KeyTraceID    = "trace_id"
	KeyConnID     = "conn_id"
	KeyCommand    = "command"
	KeyUser       = "user"
	KeyToken      = "token"
	KeyRemoteAddr = "remote_addr"
	KeyDurationMs = "elapsed_ms"
	KeyError      = "error"
	KeyReason     = "reason"
	KeyPath       = "path"
	KeyOutcome    = "outcome"
	KeyFailCount  = "fail_count"
)

// ConnID returns a conn_id attribute.
func ConnID(id uint64) slog.Attr {
	return slog.Uint64(KeyConnID, id)
}

// Command returns a command attribute.
func Command(cmd string) slog.Attr {
	return slog.String(KeyCommand, cmd)
}

// User returns a user attribute.
func User(name string) slog.Attr {
	return slog.String(KeyUser, name)
}

// Token returns a token attribute.
func Token(token string) slog.Attr {
	return slog.String(KeyToken, token)
}

// Handle formats a byte slice as a hex string attribute.
func Handle(b []byte) slog.Attr {
	return slog.String(KeyPath, hex.EncodeToString(b))
}

// Err formats an error as an attribute, producing an empty attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Reason returns a reason attribute, used for NG/ERROR response causes.
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}

// Outcome returns an outcome attribute (e.g. "ok", "locked", "denied").
func Outcome(outcome string) slog.Attr {
	return slog.String(KeyOutcome, outcome)
}

// FailCount returns a fail_count attribute.
func FailCount(n int) slog.Attr {
	return slog.Int(KeyFailCount, n)
}
