package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes of vendor credentials.
var sensitiveValuePrefixes = []string{
	"4/",  // server auth code
	"eyJ", // id token (base64 JSON header)
}

var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"auth_code",
	"authcode",
	"credential",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(strVal, prefix) {
				return slog.String(a.Key, maskValue(strVal, prefix))
			}
		}

		if IsSensitiveKey(a.Key) && strVal != "" {
			return slog.String(a.Key, redactedValue)
		}

		if isEmail(strVal) {
			return slog.String(a.Key, maskEmail(strVal))
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue keeps the prefix plus the first and last three characters.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

func isEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 &&
		!strings.ContainsAny(s, " /:") &&
		strings.Contains(s[at+1:], ".")
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(s string) string {
	at := strings.IndexByte(s, '@')
	return s[:1] + "***" + s[at:]
}

// RedactString manually redacts a string value.
func RedactString(value string) string {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	if isEmail(value) {
		return maskEmail(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
