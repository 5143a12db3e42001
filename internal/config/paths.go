package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// EnsureDirectories creates every configured directory that does not exist yet.
func (p PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.RawDir, p.ProcessedDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RawPath resolves a file name inside the raw data directory.
func (p PathsConfig) RawPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.RawDir, name)
}

// ProcessedPath resolves a file name inside the processed data directory.
func (p PathsConfig) ProcessedPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.ProcessedDir, name)
}
