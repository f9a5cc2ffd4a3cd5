package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/minbar/internal/config"
)

// FindConfig looks upwards from startDir for a minbar.yaml and returns its
// absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, config.DefaultFile) {
			return filepath.Join(dir, config.DefaultFile), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found", config.DefaultFile)
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
