package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable holding an explicit config path.
const EnvConfig = "RATCHET_CONFIG"

var configFilenames = []string{
	"ratchet.toml",
	"ratchet.yaml",
	"ratchet.yml",
	".ratchet.toml",
	".ratchet.yaml",
	".ratchet.yml",
}

// Find locates the config file. An explicit path wins and must exist; otherwise the
// search walks up from startDir and returns "" when no directory has a config file.
func Find(startDir, explicitPath string) (string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		candidate, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(candidate)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("config %q is a directory", candidate)
		}
		return candidate, nil
	}

	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range configFilenames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
