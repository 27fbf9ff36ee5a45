package workenv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Above the Linux pid_max ceiling, so never a live process.
const deadPID = 99999999

func TestRootOverride(t *testing.T) {
	t.Setenv("STAGEPACK_WORK_DIR", "")
	assert.Equal(t, filepath.Join("out", DirName), Root("out"))

	t.Setenv("STAGEPACK_WORK_DIR", "/elsewhere")
	assert.Equal(t, filepath.Join("/elsewhere", DirName), Root("out"))
}

func TestStagingLifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), DirName)

	s, err := New(root, "Temple", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(s.Dir), strconv.Itoa(os.Getpid())+"-"))

	m, err := ReadMarker(s.Dir)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), m.PID)
	assert.Equal(t, "Temple", m.Stage)

	require.NoError(t, s.WriteFile("Temple.def", []byte("[Info]"), 0o644))
	data, err := os.ReadFile(s.Path("Temple.def"))
	require.NoError(t, err)
	assert.Equal(t, "[Info]", string(data))

	assert.Error(t, s.WriteFile("Temple.def", []byte("again"), 0o644), "files are written once")

	require.NoError(t, s.Seal())
	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	s.Remove()
	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err), "empty root is removed")
}

func TestWriteFileRejectsPaths(t *testing.T) {
	s, err := New(t.TempDir(), "x", nil)
	require.NoError(t, err)
	defer s.Remove()

	for _, name := range []string{"", "../x", "a/b", MarkerName} {
		assert.ErrorIs(t, s.WriteFile(name, nil, 0o644), ErrInvalidName, name)
	}
}

func TestCleanupStale(t *testing.T) {
	root := t.TempDir()

	mine, err := New(root, "live", nil)
	require.NoError(t, err)

	staleDir := func(name string, marker *Marker) string {
		dir := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(dir, 0o755))
		if marker != nil {
			data, err := json.Marshal(marker)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerName), data, 0o644))
		}
		return dir
	}
	dead := strconv.Itoa(deadPID)

	abandoned := staleDir(dead+"-abc", &Marker{PID: deadPID, Stage: "old"})
	unmarked := staleDir(dead+"-def", nil)
	mismatched := staleDir(dead+"-ghi", &Marker{PID: deadPID + 1})
	misnamed := staleDir("stale", &Marker{PID: deadPID})
	foreign := staleDir("my-project", nil)
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(foreign, past, past))
	require.NoError(t, os.Chtimes(unmarked, past, past))

	require.NoError(t, CleanupStale(root, nil))

	assert.DirExists(t, mine.Dir)
	assert.NoDirExists(t, abandoned)
	for _, dir := range []string{unmarked, mismatched, misnamed, foreign} {
		assert.DirExists(t, dir, "only marked staging directories are removed")
	}
}

func TestRemoveKeepsForeignRoot(t *testing.T) {
	base := t.TempDir()

	s, err := New(base, "x", nil)
	require.NoError(t, err)
	s.Remove()
	assert.DirExists(t, base, "a root not named DirName is never removed")

	s, err = New(RootIn(base), "x", nil)
	require.NoError(t, err)
	s.Remove()
	assert.NoDirExists(t, RootIn(base))
	assert.DirExists(t, base)
}

func TestCleanupStaleMissingRoot(t *testing.T) {
	assert.NoError(t, CleanupStale(filepath.Join(t.TempDir(), "missing"), nil))
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(deadPID))
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckDiskSpace(dir, 1, nil))
	assert.ErrorIs(t, CheckDiskSpace(dir, 1<<60, nil), ErrInsufficientSpace)
	assert.NoError(t, CheckDiskSpace(filepath.Join(dir, "missing"), 1<<60, nil), "unknown volumes pass")
}
