package operations

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrInvalidChain     = errors.New("invalid operation chain")
)

// Named chains for parsing
var namedChains = map[string][]uint8{
	"raw":     {},
	"tar":     {OP_TAR},
	"tar.gz":  {OP_TAR, OP_GZIP},
	"tar.bz2": {OP_TAR, OP_BZIP2},
	"tar.xz":  {OP_TAR, OP_XZ},

	// Alternative names
	"tgz":  {OP_TAR, OP_GZIP},
	"tbz2": {OP_TAR, OP_BZIP2},
	"txz":  {OP_TAR, OP_XZ},
}

// Canonical names, also used as file extensions
var commonChains = map[string]string{
	"01":    "tar",
	"01-10": "tar.gz",
	"01-13": "tar.bz2",
	"01-16": "tar.xz",
}

// Named operations for pipe syntax
var namedOperations = map[string]uint8{
	"TAR":   OP_TAR,
	"GZIP":  OP_GZIP,
	"BZIP2": OP_BZIP2,
	"XZ":    OP_XZ,
}

// StringToOperations parses a chain such as "tar.gz" or "tar|xz".
func StringToOperations(opString string) ([]uint8, error) {
	opString = strings.ToLower(strings.TrimSpace(opString))
	if opString == "" {
		return nil, nil
	}

	if ops, ok := namedChains[opString]; ok {
		return append([]uint8(nil), ops...), nil
	}

	if strings.Contains(opString, "|") {
		var ops []uint8
		for _, part := range strings.Split(opString, "|") {
			part = strings.TrimSpace(strings.ToUpper(part))
			if part == "" {
				continue
			}
			op, ok := namedOperations[part]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, part)
			}
			ops = append(ops, op)
		}
		return ops, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, opString)
}

// ChainName returns the canonical name of ops, or the pipe form when the
// chain has no common name.
func ChainName(ops []uint8) string {
	if len(ops) == 0 {
		return "raw"
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%02x", op)
	}
	if name, ok := commonChains[strings.Join(parts, "-")]; ok {
		return name
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(GetName(op))
	}
	return strings.Join(names, "|")
}

// ApplyChain applies ops to data in order.
func ApplyChain(data []byte, ops []uint8) ([]byte, error) {
	current := data
	for _, opID := range ops {
		op, err := Get(opID)
		if err != nil {
			return nil, err
		}

		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}
		current = result
	}
	return current, nil
}

// ReverseChain undoes ops on data, last operation first.
func ReverseChain(data []byte, ops []uint8) ([]byte, error) {
	current := data
	for i := len(ops) - 1; i >= 0; i-- {
		op, err := Get(ops[i])
		if err != nil {
			return nil, err
		}

		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}
		current = result
	}
	return current, nil
}
