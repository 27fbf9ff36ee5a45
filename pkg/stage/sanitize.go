package stage

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Characters that cannot appear in a file name on any supported platform.
const unsafeNameChars = `/\:*?"<>|`

// DefaultFileName is used when sanitizing leaves nothing.
const DefaultFileName = "stage"

// MaxNameBytes bounds the file-name stem so that the longest published
// name (the ".old-<pid>" backup of a directory export) stays within the
// 255-byte limit common to supported filesystems.
const MaxNameBytes = 255 - len(".old-") - 10

// Device names Windows reserves regardless of extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

func isUnsafeRune(r rune) bool {
	return strings.ContainsRune(unsafeNameChars, r) || unicode.IsControl(r)
}

// reservedStem returns the part of name a device check applies to: up to
// the first dot, without trailing spaces.
func reservedStem(name string) (stem string, end int) {
	end = strings.IndexByte(name, '.')
	if end < 0 {
		end = len(name)
	}
	return strings.TrimRight(name[:end], " "), end
}

func isReserved(name string) bool {
	stem, _ := reservedStem(name)
	return reservedNames[strings.ToUpper(stem)]
}

// NameProblem explains why name cannot be used as a single path segment,
// or returns "" when it can.
func NameProblem(name string) string {
	switch {
	case name == "." || name == "..":
		return "is a relative path component"
	case strings.ContainsFunc(name, isUnsafeRune):
		return fmt.Sprintf("contains characters not allowed in file names (%s)", unsafeNameChars)
	case len(strings.Trim(name, " .")) > MaxNameBytes:
		return fmt.Sprintf("is longer than %d bytes", MaxNameBytes)
	case isReserved(strings.Trim(name, " .")):
		return "is a reserved device name"
	}
	return ""
}

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	return NameProblem(name) == ""
}

// SanitizeName derives the output file name from a stage name. Unsafe
// characters become '_', surrounding spaces and dots are trimmed, device
// names get '_' after the stem and overlong names are cut at a rune
// boundary.
func SanitizeName(name string) string {
	out := strings.Map(func(r rune) rune {
		if isUnsafeRune(r) {
			return '_'
		}
		return r
	}, name)
	out = strings.Trim(out, " .")
	if isReserved(out) {
		_, end := reservedStem(out)
		out = out[:end] + "_" + out[end:]
	}
	if len(out) > MaxNameBytes {
		cut := MaxNameBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.Trim(out[:cut], " .")
	}
	if out == "" {
		return DefaultFileName
	}
	return out
}
