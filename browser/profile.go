package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveProfileDir returns the explicit profile directory, or a fresh
// temporary one under $HOME/.timefill that the caller removes on close.
func resolveProfileDir(explicitDir string) (string, bool, error) {
	if strings.TrimSpace(explicitDir) != "" {
		if err := os.MkdirAll(explicitDir, 0o700); err != nil {
			return "", false, fmt.Errorf("create profile directory %q: %w", explicitDir, err)
		}
		return explicitDir, false, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, ".timefill")
	if err := os.MkdirAll(base, 0o700); err != nil {
		return "", false, fmt.Errorf("create directory %q: %w", base, err)
	}
	profileDir, err := os.MkdirTemp(base, "browser-profile-*")
	if err != nil {
		return "", false, fmt.Errorf("create temporary profile dir: %w", err)
	}
	return profileDir, true, nil
}
