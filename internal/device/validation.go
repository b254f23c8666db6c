package device

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

// serialForbidden matches characters that cannot appear in a store key.
// They are replaced rather than rejected so labels printed with
// punctuation still register.
var serialForbidden = regexp.MustCompile(`[.#$\[\]/]`)

// SanitizeSerial normalizes a raw serial number into a store key.
// Forbidden characters become underscores and surrounding whitespace is
// dropped.
//
// Returns:
//   - string: The sanitized serial
//   - error: ErrInvalidSerial when nothing usable remains
func SanitizeSerial(raw string) (string, error) {
	serial := serialForbidden.ReplaceAllString(strings.TrimSpace(raw), "_")
	if serial == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSerial, raw)
	}
	return serial, nil
}

func validateUser(userID string) error {
	if userID == "" || strings.ContainsRune(userID, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	if err := store.ValidatePath(userID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}
