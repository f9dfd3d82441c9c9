// Package tutorial describes the per-tutorial metadata shipped inside an
// uploaded archive.
package tutorial

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// ConfigFile is the name of the tutorial configuration at the workspace root.
const ConfigFile = "tutorial-config.json"

// PanelBrowser requests a live preview of the learner's frontend.
const PanelBrowser = "browser"

var ErrConfigNotFound = errors.New("tutorial configuration not found")

// Config is read once after extraction and treated as read-only afterwards.
type Config struct {
	// Repository is an optional git URL cloned into the project folder.
	Repository string   `json:"repository,omitempty"`
	Panels     []string `json:"panels,omitempty"`
	// Files are scaffolded as empty placeholders, in order.
	Files     []string `json:"files,omitempty"`
	OpenFiles []string `json:"openFiles,omitempty"`
}

// HasPanel reports whether the named panel was requested.
func (c *Config) HasPanel(name string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Panels {
		if p == name {
			return true
		}
	}
	return false
}

// HasRepository reports whether an external repository is configured.
func (c *Config) HasRepository() bool {
	return c != nil && c.Repository != ""
}

// Load reads the configuration at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read tutorial configuration: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}
