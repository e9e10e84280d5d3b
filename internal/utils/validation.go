package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Payload size limits (in bytes)
const (
	MaxJSONSize    = 1 * 1024 * 1024 // 1MB - maximum request body size
	MaxMessageSize = 16 * 1024       // 16KB - single message size limit
	MaxTimezoneLen = 64              // IANA identifiers are far shorter
)

// ValidateTimezone checks that a timezone string is shaped like an IANA
// identifier. Resolution itself never fails on malformed input; this guard
// exists to cap lengths and keep junk out of logs and outbound payloads.
// Empty input is allowed and means "use the default region".
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if len(tz) > MaxTimezoneLen {
		return fmt.Errorf("timezone exceeds %d characters", MaxTimezoneLen)
	}
	if strings.Contains(tz, "..") {
		return fmt.Errorf("timezone contains invalid sequence")
	}
	for _, r := range tz {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '/' || r == '_' || r == '-' || r == '+':
		default:
			return fmt.Errorf("timezone contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateSessionID checks that an id has the provider's UUID shape.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	return nil
}

// ValidateInitialMessage bounds the user-supplied requesting message that is
// echoed back on the completion overlay.
func ValidateInitialMessage(msg string) error {
	if len(msg) > MaxMessageSize {
		return fmt.Errorf("message size %d bytes exceeds maximum %d bytes", len(msg), MaxMessageSize)
	}
	if !utf8.ValidString(msg) {
		return fmt.Errorf("message is not valid UTF-8")
	}
	return nil
}
