package errors

import (
	"strings"
	"unicode"
)

// ValidateElementID validates a node or edge identifier from external input.
// It rejects identifiers that could be used for path traversal or injection
// when ids end up in cache keys, file names, or URLs.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences (.., //)
//   - No null bytes or backslashes
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "element id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "element id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "element id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "element id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a file path supplied on the command line or over
// the API for safety. It prevents path traversal attacks and ensures
// reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
