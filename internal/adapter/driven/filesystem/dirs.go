package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDownloadDir returns the user's Downloads directory, falling back to
// the home directory itself when no Downloads folder exists.
func DefaultDownloadDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	downloads := filepath.Join(home, "Downloads")
	if info, err := os.Stat(downloads); err == nil && info.IsDir() {
		return downloads, nil
	}
	return home, nil
}
