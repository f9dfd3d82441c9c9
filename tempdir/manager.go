package tempdir

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"
)

// Manager handles the creation and removal of temporary directories
type Manager struct {
	fs       afero.Fs
	baseDir  string
	tempDirs map[string]string
	mutex    sync.Mutex
}

// NewManager creates a manager that places directories under baseDir.
// An empty baseDir means the system temp directory.
func NewManager(fs afero.Fs, baseDir string) *Manager {
	return &Manager{
		fs:       fs,
		baseDir:  baseDir,
		tempDirs: make(map[string]string),
	}
}

// CreateTempDir creates a new temporary directory and returns its path
func (m *Manager) CreateTempDir(prefix string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.baseDir != "" {
		if err := m.fs.MkdirAll(m.baseDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create temp base directory: %w", err)
		}
	}

	tempDir, err := afero.TempDir(m.fs, m.baseDir, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	m.tempDirs[prefix] = tempDir
	return tempDir, nil
}

// GetTempDir returns the path of an existing temporary directory
func (m *Manager) GetTempDir(prefix string) (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	dir, exists := m.tempDirs[prefix]
	return dir, exists
}

// RemoveTempDir removes a specific temporary directory
func (m *Manager) RemoveTempDir(prefix string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	dir, exists := m.tempDirs[prefix]
	if !exists {
		return fmt.Errorf("temporary directory with prefix %s does not exist", prefix)
	}

	if err := m.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove temporary directory %s: %w", dir, err)
	}

	delete(m.tempDirs, prefix)
	return nil
}

// Cleanup removes all temporary directories created by this manager
func (m *Manager) Cleanup() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var errs []error
	for prefix, dir := range m.tempDirs {
		if err := m.fs.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove temporary directory %s: %w", dir, err))
			continue
		}
		delete(m.tempDirs, prefix)
	}
	return errors.Join(errs...)
}
