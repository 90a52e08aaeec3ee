//go:build windows

package executable

import (
	"os"
	"path/filepath"
)

const pathSeparators = `\/:`

// isExecutable reports whether path is a regular file. Windows has no
// execute bit; CreateProcess decides whether the image is runnable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// candidates appends the .exe extension to bare names, mirroring what
// CreateProcess does for an application name without one.
func candidates(path string) []string {
	if filepath.Ext(path) != "" {
		return []string{path}
	}

	return []string{path + ".exe", path}
}
