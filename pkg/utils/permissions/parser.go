// Package permissions parses the octal file modes accepted on the command
// line.
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultFilePerms is the mode of published files: readable by the engine
// regardless of which user runs it.
const DefaultFilePerms os.FileMode = 0o644

// ParseOctalString parses "644", "0644" or "0o644". The empty string gives
// DefaultFilePerms. Only permission bits are accepted, and the owner must
// keep read access.
func ParseOctalString(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFilePerms, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		digits = "0"
	}
	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return 0, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}
	mode := os.FileMode(val)
	if mode&0o400 == 0 {
		return 0, fmt.Errorf("invalid permission string %q: owner must be able to read", s)
	}
	return mode, nil
}

// FormatOctal formats a permission value as an octal string
func FormatOctal(perm os.FileMode) string {
	return fmt.Sprintf("0%o", perm.Perm())
}
