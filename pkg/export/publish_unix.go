//go:build !windows

package export

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// atomicReplace moves the staged archive over dst. A rename within one
// volume replaces dst atomically.
func atomicReplace(staged, dst string, logger hclog.Logger) error {
	if err := os.Rename(staged, dst); err != nil {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	logger.Debug("Published archive", "dest", dst)
	return nil
}
