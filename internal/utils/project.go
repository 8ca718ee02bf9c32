package utils

import (
	"os"
	"path/filepath"
)

// projectMarkers identify the root of a project checkout.
var projectMarkers = []string{".git", ".agents", "AGENTS.md"}

// FindProjectRoot walks up from start to the nearest directory holding a project
// marker. The boolean is false when none is found before the filesystem root or
// the user's home directory.
func FindProjectRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start, false
	}
	home, _ := os.UserHomeDir()

	for {
		if dir == home {
			return start, false
		}
		for _, m := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, false
		}
		dir = parent
	}
}
