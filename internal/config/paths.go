package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configFilePath returns the default config file location: nemcli.yaml next
// to the executable, falling back to the working directory.
func configFilePath() string {
	exeDir, err := ExecutableDir()
	if err != nil {
		return "nemcli.yaml"
	}
	return filepath.Join(exeDir, "nemcli.yaml")
}

// ExecutableDir resolves the directory containing the running binary,
// following symlinks. Paths are resolved against it rather than the working
// directory so the toolkit behaves the same wherever it is invoked from.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// resolvePaths anchors relative directories at the executable directory.
func (c *Config) resolvePaths() error {
	exeDir, err := ExecutableDir()
	if err != nil {
		return err
	}
	anchor := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(exeDir, p)
	}
	c.Paths.BeforeDir = anchor(c.Paths.BeforeDir)
	c.Paths.AfterDir = anchor(c.Paths.AfterDir)
	c.Paths.ResultsDir = anchor(c.Paths.ResultsDir)
	c.Paths.LogsDir = anchor(c.Paths.LogsDir)
	c.Logging.FilePath = anchor(c.Logging.FilePath)
	return nil
}

// EnsureDirectories creates the working directories if they do not exist.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.BeforeDir,
		c.Paths.AfterDir,
		c.Paths.ResultsDir,
		c.Paths.LogsDir,
	} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the path of a named log file inside the logs dir.
func (c *Config) GetLogPath(name string) string {
	return filepath.Join(c.Paths.LogsDir, name)
}
