package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExecutableDir returns the directory of the running binary, falling back to
// the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil && strings.TrimSpace(exe) != "" {
		if resolved, resolveErr := filepath.EvalSymlinks(exe); resolveErr == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, wdErr := os.Getwd(); wdErr == nil {
		return wd
	}
	return "."
}

// ResolvePath makes raw absolute relative to base. An empty raw resolves to
// fallback under base.
func ResolvePath(base, raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	if target == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(base, target))
}

// ProfilePath locates the AI profile document. Relative paths resolve against
// the directory of the config file.
func (c *AppConfig) ProfilePath(configPath string) string {
	if strings.TrimSpace(c.AI.ProfilePath) == "" {
		return ""
	}
	base := "."
	if configPath != "" {
		base = filepath.Dir(configPath)
	}
	return ResolvePath(base, c.AI.ProfilePath, "")
}
