//go:build unix

package executable

import "os"

const pathSeparators = "/"

// isExecutable reports whether path is a regular file with any execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

func candidates(path string) []string {
	return []string{path}
}
