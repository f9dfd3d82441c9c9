package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_REPOSITORY_OWNER", "GITHUB_REPOSITORY",
		"VONAGE_API_KEY", "VONAGE_API_SECRET", "VONAGE_APPLICATION_ID",
		"TUTORIAL_ROOT_DIR", "TUTORIAL_BUILD_COMMAND", "TUTORIAL_VSCODE_TASKS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.RootDir)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, "tutorials", cfg.TutorialsDir)
	assert.Equal(t, ".devcontainer", cfg.DevcontainerDir)
	assert.Equal(t, DefaultRepoOwner, cfg.RepoOwner)
	assert.Equal(t, DefaultRepoName, cfg.RepoName())
	assert.Equal(t, DefaultImage, cfg.Image)
	assert.Equal(t, "npm install && npm run build", cfg.BuildCommand)
	assert.Equal(t, "dist", cfg.BuildOutput)
	assert.False(t, cfg.VSCodeTasks)
	assert.Equal(t, DefaultVonageURL, cfg.Vonage.APIURL)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_REPOSITORY_OWNER", "vonage-community")
	t.Setenv("GITHUB_REPOSITORY", "vonage-community/tutorials")
	t.Setenv("VONAGE_API_KEY", "key")
	t.Setenv("VONAGE_API_SECRET", "secret")
	t.Setenv("VONAGE_APPLICATION_ID", "app-id")
	t.Setenv("TUTORIAL_BUILD_COMMAND", "pnpm build")
	t.Setenv("TUTORIAL_VSCODE_TASKS", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "vonage-community", cfg.RepoOwner)
	assert.Equal(t, "tutorials", cfg.RepoName())
	assert.Equal(t, "key", cfg.Vonage.APIKey)
	assert.Equal(t, "secret", cfg.Vonage.APISecret)
	assert.Equal(t, "app-id", cfg.Vonage.ApplicationID)
	assert.Equal(t, "pnpm build", cfg.BuildCommand)
	assert.True(t, cfg.VSCodeTasks)
	assert.NoError(t, cfg.ValidateVonage())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "devtut.yaml")
	content := "root_dir: /srv/repo\nbuild_output: build\nvonage:\n  api_url: http://localhost:9999\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/repo", cfg.RootDir)
	assert.Equal(t, "build", cfg.BuildOutput)
	assert.Equal(t, "http://localhost:9999", cfg.Vonage.APIURL)
	assert.Equal(t, filepath.Join("/srv/repo", "uploads"), cfg.UploadsPath())
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Repository = "no-slash"
	assert.ErrorContains(t, cfg.Validate(), "owner/name")

	cfg = DefaultConfig()
	cfg.UploadsDir = " "
	cfg.Image = ""
	err := cfg.Validate()
	assert.ErrorContains(t, err, "uploads_dir must not be empty")
	assert.ErrorContains(t, err, "image must not be empty")
}

func TestValidateRejectsDirsOutsideRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TutorialsDir = "/srv/tutorials"
	cfg.DevcontainerDir = "../envs"
	err := cfg.Validate()
	assert.ErrorContains(t, err, `tutorials_dir "/srv/tutorials" must be relative to root_dir`)
	assert.ErrorContains(t, err, `devcontainer_dir "../envs" must be relative to root_dir`)

	cfg = DefaultConfig()
	cfg.TutorialsDir = "content/tutorials"
	cfg.DevcontainerDir = "envs"
	assert.NoError(t, cfg.Validate())
}

func TestValidateVonage(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ValidateVonage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VONAGE_API_KEY")
	assert.Contains(t, err.Error(), "VONAGE_APPLICATION_ID")
}

func TestPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootDir = "/repo"
	assert.Equal(t, "/repo/tutorials", cfg.TutorialsPath())
	assert.Equal(t, "/repo/.devcontainer", cfg.DevcontainerPath())
	assert.Equal(t, "/abs/uploads", cfg.Path("/abs/uploads"))
}
