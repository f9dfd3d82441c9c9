package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultRepoOwner = "YourUsername"
	DefaultRepoName  = "YourRepo"
	DefaultImage     = "mcr.microsoft.com/devcontainers/javascript-node:1-22-bookworm"
	DefaultVonageURL = "https://api.nexmo.com"
)

// Config stores all configuration of the application.
type Config struct {
	RootDir         string `mapstructure:"root_dir"`
	UploadsDir      string `mapstructure:"uploads_dir"`
	TutorialsDir    string `mapstructure:"tutorials_dir"`
	DevcontainerDir string `mapstructure:"devcontainer_dir"`
	TempDir         string `mapstructure:"temp_dir"`

	RepoOwner  string `mapstructure:"repo_owner"`
	Repository string `mapstructure:"repository"`

	Image        string `mapstructure:"image"`
	BuildCommand string `mapstructure:"build_command"`
	BuildOutput  string `mapstructure:"build_output"`
	VSCodeTasks  bool   `mapstructure:"vscode_tasks"`

	LogDir string `mapstructure:"log_dir"`
	Debug  bool   `mapstructure:"debug"`

	ToolbarDir string `mapstructure:"toolbar_dir"`

	Vonage VonageConfig `mapstructure:"vonage"`
}

// VonageConfig holds the credentials used by the capability toggle.
type VonageConfig struct {
	APIURL        string `mapstructure:"api_url"`
	APIKey        string `mapstructure:"api_key"`
	APISecret     string `mapstructure:"api_secret"`
	ApplicationID string `mapstructure:"application_id"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		RootDir:         ".",
		UploadsDir:      "uploads",
		TutorialsDir:    "tutorials",
		DevcontainerDir: ".devcontainer",
		TempDir:         os.TempDir(),
		RepoOwner:       DefaultRepoOwner,
		Image:           DefaultImage,
		BuildCommand:    "npm install && npm run build",
		BuildOutput:     "dist",
		ToolbarDir:      "vonage-toolbar",
		Vonage: VonageConfig{
			APIURL: DefaultVonageURL,
		},
	}
}

// LoadConfig reads configuration from an optional file, a .env file and
// environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TUTORIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well known names set by GitHub Actions and the Vonage tooling
	v.BindEnv("repo_owner", "GITHUB_REPOSITORY_OWNER")
	v.BindEnv("repository", "GITHUB_REPOSITORY")
	v.BindEnv("vonage.api_key", "VONAGE_API_KEY")
	v.BindEnv("vonage.api_secret", "VONAGE_API_SECRET")
	v.BindEnv("vonage.application_id", "VONAGE_APPLICATION_ID")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("root_dir", d.RootDir)
	v.SetDefault("uploads_dir", d.UploadsDir)
	v.SetDefault("tutorials_dir", d.TutorialsDir)
	v.SetDefault("devcontainer_dir", d.DevcontainerDir)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("repo_owner", d.RepoOwner)
	v.SetDefault("repository", d.Repository)
	v.SetDefault("image", d.Image)
	v.SetDefault("build_command", d.BuildCommand)
	v.SetDefault("build_output", d.BuildOutput)
	v.SetDefault("vscode_tasks", d.VSCodeTasks)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("toolbar_dir", d.ToolbarDir)
	v.SetDefault("vonage.api_url", d.Vonage.APIURL)
	v.SetDefault("vonage.api_key", "")
	v.SetDefault("vonage.api_secret", "")
	v.SetDefault("vonage.application_id", "")
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error
	required := []struct{ key, value string }{
		{"root_dir", c.RootDir},
		{"uploads_dir", c.UploadsDir},
		{"tutorials_dir", c.TutorialsDir},
		{"devcontainer_dir", c.DevcontainerDir},
		{"image", c.Image},
		{"build_command", c.BuildCommand},
		{"build_output", c.BuildOutput},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", r.key))
		}
	}
	// Reused in container paths and repository links.
	for _, r := range []struct{ key, value string }{
		{"tutorials_dir", c.TutorialsDir},
		{"devcontainer_dir", c.DevcontainerDir},
	} {
		clean := filepath.ToSlash(filepath.Clean(r.value))
		if filepath.IsAbs(r.value) || clean == ".." || strings.HasPrefix(clean, "../") {
			errs = append(errs, fmt.Errorf("%s %q must be relative to root_dir", r.key, r.value))
		}
	}
	if c.Repository != "" {
		owner, name, ok := strings.Cut(c.Repository, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			errs = append(errs, fmt.Errorf("repository %q is not of the form owner/name", c.Repository))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateVonage checks the credentials needed to call the application API.
func (c *Config) ValidateVonage() error {
	var missing []string
	if c.Vonage.APIKey == "" {
		missing = append(missing, "VONAGE_API_KEY")
	}
	if c.Vonage.APISecret == "" {
		missing = append(missing, "VONAGE_API_SECRET")
	}
	if c.Vonage.ApplicationID == "" {
		missing = append(missing, "VONAGE_APPLICATION_ID")
	}
	if c.Vonage.APIURL == "" {
		missing = append(missing, "vonage.api_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Vonage settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RepoName returns the repository name part of Repository.
func (c *Config) RepoName() string {
	if _, name, ok := strings.Cut(c.Repository, "/"); ok && name != "" {
		return name
	}
	return DefaultRepoName
}

// Path resolves a configured directory against RootDir.
func (c *Config) Path(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.RootDir, dir)
}

func (c *Config) UploadsPath() string      { return c.Path(c.UploadsDir) }
func (c *Config) TutorialsPath() string    { return c.Path(c.TutorialsDir) }
func (c *Config) DevcontainerPath() string { return c.Path(c.DevcontainerDir) }
func (c *Config) ToolbarPath() string      { return c.Path(c.ToolbarDir) }
