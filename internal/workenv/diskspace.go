package workenv

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// DiskSpaceMultiplier is applied to the bytes an export will write.
const DiskSpaceMultiplier = 2

var ErrInsufficientSpace = errors.New("workenv: insufficient disk space")

// CheckDiskSpace fails when the volume holding path cannot take need bytes
// times DiskSpaceMultiplier. A volume that cannot be queried passes.
func CheckDiskSpace(path string, need int64, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	total := need * DiskSpaceMultiplier

	available, err := availableDiskSpace(path)
	if err != nil {
		logger.Warn("⚠️ Could not check disk space", "path", path, "error", err)
		return nil
	}

	logger.Debug("💾 Disk space check", "needed_bytes", total, "available_bytes", available)
	if available < total {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientSpace, total, available)
	}
	return nil
}
