package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateComponentName validates a component name for safety and correctness.
// Component names become vertex IDs, cache key material, and file path
// fragments, so the rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 256 characters
func ValidateComponentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidComponent, "component name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidComponent, "component name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidComponent, "component name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidComponent, "component name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputPath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// hexColorRegex matches #RGB and #RRGGBB hex color literals.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateHexColor validates a carrier color override.
func ValidateHexColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidCarrier, "color cannot be empty")
	}

	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidCarrier, "invalid hex color: %q", color)
	}

	return nil
}

// ValidateURL validates a connection URL against the allowed schemes
// (e.g. "redis", "mongodb"). Scheme matching is a prefix check without
// full URL parsing; the backend client does the real parse.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range schemes {
		if strings.HasPrefix(rawURL, scheme+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidInput, "URL must use one of these schemes: %s", strings.Join(schemes, ", "))
}
