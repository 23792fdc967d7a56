package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// packageIDRegex matches valid NuGet package ids.
var packageIDRegex = regexp.MustCompile(`^\w+([_.-]\w+)*$`)

// ValidatePackageID validates a NuGet package id for safety and correctness.
// Package ids end up in feed URLs, so anything that could escape a path
// segment is rejected.
//
// Validation rules:
//   - No empty ids
//   - Maximum length of 100 characters (the nuget.org limit)
//   - Letters, digits, and single '.', '-' or '_' separators only
func ValidatePackageID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "package id cannot be empty")
	}

	const maxIDLength = 100
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "package id too long (max %d characters)", maxIDLength)
	}

	if !packageIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid package id: %q", id)
	}

	return nil
}

// ValidateProjectPath validates a path handed to the project or solution
// analyzers. Unlike package ids, absolute paths and parent segments are
// allowed; only obviously broken input is rejected.
func ValidateProjectPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a feed URL for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
