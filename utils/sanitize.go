package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var nameReg = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// SanitizeName drops every character that is not a letter, digit, hyphen or underscore
func SanitizeName(name string) string {
	return nameReg.ReplaceAllString(name, "")
}

// SanitizeFilePath sanitizes a relative file path to prevent directory
// traversal. The result is slash separated and never absolute.
func SanitizeFilePath(path string) string {
	// Convert to slash path
	path = filepath.ToSlash(path)

	// Remove any "." or ".." components
	parts := strings.Split(path, "/")
	var sanitizedParts []string
	for _, part := range parts {
		if part != "" && part != "." && part != ".." {
			sanitizedParts = append(sanitizedParts, part)
		}
	}

	return strings.Join(sanitizedParts, "/")
}
