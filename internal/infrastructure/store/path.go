package store

import (
	"fmt"
	"strings"
)

// forbiddenKeyChars are characters the store's key alphabet excludes.
// Slash is excluded implicitly because it separates path segments.
const forbiddenKeyChars = ".#$[]"

// ValidatePath checks that a path is non-empty, has no empty segments,
// and uses only the store's key alphabet.
//
// Returns:
//   - error: ErrInvalidPath (wrapped with detail) or nil
func ValidatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
		if strings.ContainsAny(segment, forbiddenKeyChars) {
			return fmt.Errorf("%w: segment %q contains a forbidden character", ErrInvalidPath, segment)
		}
	}
	return nil
}

// Join builds a path from segments. Segments are joined verbatim; callers
// validate the result before use.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// splitPath returns the parent path and key of a path.
// A single-segment path has an empty parent.
func splitPath(path string) (parent, key string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
