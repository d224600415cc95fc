package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// sensitiveKeys are attribute keys whose values are stored payloads or
// credentials. Matching is case-insensitive and exact.
var sensitiveKeys = map[string]struct{}{
	"value":    {},
	"args":     {},
	"password": {},
	"secret":   {},
}

// IsSensitiveKey reports whether values logged under key are masked.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// Redacted returns the placeholder that replaces a masked value of n bytes
// or elements.
func Redacted(n int) string {
	return fmt.Sprintf("[REDACTED len=%d]", n)
}

// redactSensitive masks a sensitive attribute, keeping only its length.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if !IsSensitiveKey(a.Key) {
		return a
	}
	return slog.String(a.Key, Redacted(valueLen(a.Value)))
}

func valueLen(v slog.Value) int {
	switch v.Kind() {
	case slog.KindString:
		return len(v.String())
	case slog.KindAny:
		switch x := v.Any().(type) {
		case []byte:
			return len(x)
		case []string:
			return len(x)
		case [][]byte:
			return len(x)
		case []any:
			return len(x)
		case fmt.Stringer:
			return len(x.String())
		}
	}
	return len(v.String())
}

// RedactString masks s when key is sensitive and returns it unchanged
// otherwise. It is meant for text assembled outside of slog.
func RedactString(key, s string) string {
	if IsSensitiveKey(key) {
		return Redacted(len(s))
	}
	return s
}
