// Package pathing resolves file references declared in check files.
// body_file values are anchored at the directory of the check file
// that declares them, while absolute-like paths pass through untouched.
package pathing

import (
	"path/filepath"
	"strings"
)

// Normalize trims path-like input from check file fields.
func Normalize(path string) string {
	return strings.TrimSpace(path)
}

// IsAbsoluteLike reports whether the path should be treated as absolute
// regardless of host OS path semantics. Covers POSIX roots, Windows
// drive letters, and UNC shares so a check file written on one OS
// behaves the same on another.
func IsAbsoluteLike(path string) bool {
	path = Normalize(path)
	if path == "" {
		return false
	}
	if filepath.IsAbs(path) {
		return true
	}
	if strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, `//`) {
		return true
	}
	if strings.HasPrefix(path, "/") {
		return true
	}
	if len(path) >= 3 && isASCIIAlpha(path[0]) && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		return true
	}

	return false
}

// ResolveRelative anchors a possibly-relative file reference at baseDir
// while preserving absolute-like paths.
func ResolveRelative(path string, baseDir string) string {
	path = Normalize(path)
	if path == "" {
		return ""
	}
	if IsAbsoluteLike(path) || Normalize(baseDir) == "" {
		return path
	}

	return filepath.Join(baseDir, path)
}

func isASCIIAlpha(char byte) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}
