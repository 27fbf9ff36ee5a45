package operations

import (
	"fmt"
	"time"

	"github.com/provide-io/stagepack/pkg/operations/bundle"
)

// BuildArchive bundles entries with TAR and applies the rest of the chain.
// The chain must start with OP_TAR and may not contain it again.
func BuildArchive(entries []bundle.Entry, ops []uint8, modTime time.Time) ([]byte, error) {
	rest, err := splitTar(ops)
	if err != nil {
		return nil, err
	}

	data, err := bundle.Pack(entries, modTime)
	if err != nil {
		return nil, fmt.Errorf("applying TAR: %w", err)
	}
	return ApplyChain(data, rest)
}

// ExtractArchive reverses BuildArchive.
func ExtractArchive(data []byte, ops []uint8) ([]bundle.Entry, error) {
	rest, err := splitTar(ops)
	if err != nil {
		return nil, err
	}

	raw, err := ReverseChain(data, rest)
	if err != nil {
		return nil, err
	}
	entries, err := bundle.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("reversing TAR: %w", err)
	}
	return entries, nil
}

func splitTar(ops []uint8) ([]uint8, error) {
	if len(ops) == 0 || ops[0] != OP_TAR {
		return nil, fmt.Errorf("%w: archive chains start with TAR", ErrInvalidChain)
	}
	for _, op := range ops[1:] {
		if op == OP_TAR {
			return nil, fmt.Errorf("%w: TAR may appear once", ErrInvalidChain)
		}
	}
	return ops[1:], nil
}
