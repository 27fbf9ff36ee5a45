package export

import (
	"fmt"
	"strings"

	"github.com/provide-io/stagepack/pkg/operations"
)

// Format selects how the two artifacts are published.
type Format int

const (
	// FormatDir publishes <out>/<name>/{<name>.def,<name>.sff}.
	FormatDir Format = iota
	FormatTarGz
	FormatTarBz2
	FormatTarXz
)

var formatNames = map[Format]string{
	FormatDir:    "dir",
	FormatTarGz:  "tar.gz",
	FormatTarBz2: "tar.bz2",
	FormatTarXz:  "tar.xz",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Archive reports whether the format publishes a single archive file.
func (f Format) Archive() bool {
	return f != FormatDir
}

// Operations returns the packaging chain of an archive format.
func (f Format) Operations() ([]uint8, error) {
	if !f.Archive() {
		return nil, nil
	}
	name, ok := formatNames[f]
	if !ok {
		return nil, fmt.Errorf("unknown format %d", int(f))
	}
	return operations.StringToOperations(name)
}

// ParseFormat accepts the format names plus the chain aliases "tgz",
// "tbz2" and "txz".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "dir" || s == "folder" {
		return FormatDir, nil
	}
	ops, err := operations.StringToOperations(s)
	if err != nil {
		return 0, fmt.Errorf("unknown output format %q", s)
	}
	name := operations.ChainName(ops)
	for f, n := range formatNames {
		if n == name && f.Archive() {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unsupported output format %q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
