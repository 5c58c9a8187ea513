package fs

import (
	"os"
	"path/filepath"

	"github.com/peterebden/go-deferred-regex"
)

var homeRex = deferredregex.DeferredRegex{Re: `^~(/|$)`}

// ExpandHomePath expands a leading ~ in the given path to the user's home directory.
// Paths starting with ~user are left alone.
func ExpandHomePath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return ExpandHomePathTo(path, home)
}

// ExpandHomePathTo expands a leading ~ in the given path to the given directory.
func ExpandHomePathTo(path, home string) string {
	if match := homeRex.FindStringSubmatch(path); match != nil {
		return filepath.Join(home, path[len(match[0]):])
	}
	return path
}
