package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Manager handles the local byte sink for downloaded media
type Manager struct {
	outputDir string
}

// NewManager creates a storage manager rooted at outputDir
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Save streams r to a file named filename inside the output directory.
// The data lands in a temporary file first and is renamed into place, so a
// broken stream never leaves a partial file behind.
func (m *Manager) Save(r io.Reader, filename string) (string, error) {
	path := filepath.Join(m.outputDir, filename)

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to save media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return path, nil
}

// Remove deletes a previously saved file
func (m *Manager) Remove(filename string) error {
	return os.Remove(filepath.Join(m.outputDir, filename))
}

// Path returns the absolute location a filename maps to
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}
