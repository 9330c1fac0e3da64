package session

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxNameLength is the longest session name accepted, in bytes.
const MaxNameLength = 100

const unsafeNameChars = `/\:*?"<>|`

// ValidateName checks that name can be used as a session directory name.
// The same rule applies to names typed by users and to names derived from
// archive directories.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: session name cannot be empty", ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: session name is longer than %d characters", ErrValidation, MaxNameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q is a reserved name", ErrValidation, name)
	}
	if i := strings.IndexAny(name, unsafeNameChars); i >= 0 {
		return fmt.Errorf("%w: session name contains invalid character %q", ErrValidation, name[i])
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: session name contains control characters", ErrValidation)
		}
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: session name cannot start or end with whitespace", ErrValidation)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: session name cannot start or end with a dot", ErrValidation)
	}
	if strings.Contains(name, "  ") {
		return fmt.Errorf("%w: session name cannot contain consecutive spaces", ErrValidation)
	}
	return nil
}
