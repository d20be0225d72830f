// Package storage keeps dated copies of generated attendance reports on
// disk so exports remain retrievable after delivery.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive persists report files under a base directory, one subdirectory
// per date.
type Archive struct {
	baseDir string
}

// NewArchive ensures the base directory exists and returns a handle.
func NewArchive(baseDir string) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &Archive{baseDir: baseDir}, nil
}

// Store writes one report and returns its path relative to the base dir.
func (a *Archive) Store(classID int64, date time.Time, format string, data []byte) (string, error) {
	rel := filepath.Join(date.Format("2006-01-02"), fmt.Sprintf("class-%d.%s", classID, format))
	path := filepath.Join(a.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return rel, nil
}

// Read loads an archived report by its relative path.
func (a *Archive) Read(rel string) ([]byte, error) {
	clean := filepath.Clean(rel)
	if clean == ".." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("invalid report path %q", rel)
	}
	data, err := os.ReadFile(filepath.Join(a.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	return data, nil
}
