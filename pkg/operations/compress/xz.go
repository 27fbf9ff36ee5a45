package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/provide-io/stagepack/pkg/operations"
)

// XzOperation implements XZ (LZMA2) compression
type XzOperation struct {
	operations.BaseOperation
}

func NewXzOperation() *XzOperation {
	return &XzOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_XZ,
			OpName: "XZ",
		},
	}
}

// Apply compresses data using XZ
func (o *XzOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer

	xw, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating xz writer: %w", err)
	}
	if _, err := xw.Write(input); err != nil {
		xw.Close()
		return nil, fmt.Errorf("writing xz data: %w", err)
	}
	if err := xw.Close(); err != nil {
		return nil, fmt.Errorf("closing xz writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Reverse decompresses XZ data
func (o *XzOperation) Reverse(input []byte) ([]byte, error) {
	xr, err := xz.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("creating xz reader: %w", err)
	}

	data, err := io.ReadAll(xr)
	if err != nil {
		return nil, fmt.Errorf("reading xz data: %w", err)
	}
	return data, nil
}
