// Package utils provides input validation and sanitization for the
// session API.
//
// Validation:
//   - Timezone shape checks before region resolution
//   - Provider session id (UUID) checks
//   - Requesting message size and encoding limits
//
// Viewer-supplied messages are sanitized once at intake and stored clean;
// everything downstream echoes them verbatim.
//
// Example Usage:
//
//	if err := utils.ValidateTimezone(req.Timezone); err != nil {
//		return err
//	}
//	msg := utils.SanitizeMessage(req.InitialMessage)
package utils
