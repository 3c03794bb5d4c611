package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxViewportPx bounds headless render sizes.
const MaxViewportPx = 16384

// ValidatePath validates a scan root or output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
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

// ValidateFormat checks that format is one of allowed, ignoring case.
func ValidateFormat(format string, allowed []string) error {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, f) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (expected one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateViewport checks a headless render size.
func ValidateViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport must be positive, got %dx%d", width, height)
	}
	if width > MaxViewportPx || height > MaxViewportPx {
		return New(ErrCodeInvalidInput, "viewport %dx%d exceeds %d pixels per side", width, height, MaxViewportPx)
	}
	return nil
}

// ValidateExtension checks a highlight filter such as ".go" or "go".
// The empty string clears the filter and is accepted.
func ValidateExtension(ext string) error {
	if ext == "" {
		return nil
	}
	e := strings.TrimPrefix(ext, ".")
	if e == "" || len(e) > 10 {
		return New(ErrCodeInvalidInput, "invalid extension %q", ext)
	}
	if strings.ContainsAny(e, `./\ `) {
		return New(ErrCodeInvalidInput, "extension %q contains invalid characters", ext)
	}
	return nil
}
