// Package operations holds the packaging transforms applied to an exported
// stage: a TAR bundle followed by an optional compression step. Operation
// identifiers are single bytes so a chain can be recorded compactly.
package operations

import (
	"fmt"
	"sync"
)

const (
	OP_NONE = 0x00

	// Bundle operations (0x01-0x0F)
	OP_TAR = 0x01

	// Compression operations (0x10-0x2F)
	OP_GZIP  = 0x10
	OP_BZIP2 = 0x13
	OP_XZ    = 0x16
)

// Operation is a reversible byte transform.
type Operation interface {
	ID() uint8
	Name() string
	Apply(input []byte) ([]byte, error)
	Reverse(input []byte) ([]byte, error)
}

// BaseOperation provides the identity half of Operation.
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

var (
	registryMu sync.RWMutex
	registry   = make(map[uint8]Operation)
)

// Register makes op available to chains. Compression packages call it from
// init.
func Register(op Operation) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[op.ID()] = op
}

// Get retrieves an operation by ID.
func Get(id uint8) (Operation, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	op, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOperation, id)
	}
	return op, nil
}

// GetName returns the name of an operation by ID.
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_TAR:
		return "TAR"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	case OP_XZ:
		return "XZ"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
