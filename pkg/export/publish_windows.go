//go:build windows

package export

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows"
)

// atomicReplace moves the staged archive over dst in one MoveFileEx call.
// MOVEFILE_WRITE_THROUGH returns only once the move is on disk. A locked
// destination is reported, not waited on.
func atomicReplace(staged, dst string, logger hclog.Logger) error {
	from, err := windows.UTF16PtrFromString(staged)
	if err != nil {
		return fmt.Errorf("staged path %q: %w", staged, err)
	}
	to, err := windows.UTF16PtrFromString(dst)
	if err != nil {
		return fmt.Errorf("destination path %q: %w", dst, err)
	}

	if err := windows.MoveFileEx(from, to, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH); err != nil {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	logger.Debug("Published archive", "dest", dst)
	return nil
}
