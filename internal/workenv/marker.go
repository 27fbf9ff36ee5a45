package workenv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// MarkerName is the ownership marker inside each staging directory.
const MarkerName = ".owner"

// Marker records which process owns a staging directory.
type Marker struct {
	PID     int       `json:"pid"`
	Stage   string    `json:"stage"`
	Created time.Time `json:"created"`
}

func writeMarker(dir, stage string) error {
	data, err := json.Marshal(Marker{PID: os.Getpid(), Stage: stage, Created: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode staging marker: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MarkerName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write staging marker: %w", err)
	}
	return nil
}

// ReadMarker returns the marker of a staging directory.
func ReadMarker(dir string) (Marker, error) {
	var m Marker
	data, err := os.ReadFile(filepath.Join(dir, MarkerName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse staging marker: %w", err)
	}
	return m, nil
}

// CleanupStale removes staging directories left behind by dead exports.
// Only entries named "<pid>-..." whose marker names that same PID are
// considered; anything else under root is not ours and is never touched.
func CleanupStale(root string, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	self := os.Getpid()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		pid, ok := ownerPID(dir, entry.Name())
		if !ok || pid == self || IsProcessRunning(pid) {
			continue
		}

		logger.Info("🧹 Cleaning up stale staging directory", "path", dir, "pid", pid)
		if err := os.RemoveAll(dir); err != nil {
			logger.Debug("⚠️ Failed to remove stale directory", "path", dir, "error", err)
		}
	}
	return nil
}

// ownerPID returns the PID a staging directory belongs to. Both the name
// prefix and the marker must agree.
func ownerPID(dir, name string) (int, bool) {
	prefix, _, found := strings.Cut(name, "-")
	if !found {
		return 0, false
	}
	pid, err := strconv.Atoi(prefix)
	if err != nil || pid <= 0 {
		return 0, false
	}
	m, err := ReadMarker(dir)
	if err != nil || m.PID != pid {
		return 0, false
	}
	return pid, true
}
