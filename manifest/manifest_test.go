package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const path = "/ws/package.json"

func readManifest(t *testing.T, fs afero.Fs) map[string]interface{} {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestPatchAddsRequiredEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"name":"sms-tutorial"}`), 0644))

	require.NoError(t, Patch(fs, path, Options{}))

	pkg := readManifest(t, fs)
	assert.Equal(t, "sms-tutorial", pkg["name"])
	assert.Equal(t, map[string]interface{}{StaticServer: StaticServerVersion}, pkg["devDependencies"])
	assert.Equal(t, map[string]interface{}{TutorialScript: TutorialScriptCommand}, pkg["scripts"])
}

func TestPatchConditionalEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{}`), 0644))

	require.NoError(t, Patch(fs, path, Options{LiveReload: true, PostInstall: true}))

	pkg := readManifest(t, fs)
	devDeps := pkg["devDependencies"].(map[string]interface{})
	scripts := pkg["scripts"].(map[string]interface{})
	assert.Equal(t, LiveServerVersion, devDeps[LiveServer])
	assert.Equal(t, PostInstallCommand, scripts[PostInstallScript])
}

func TestPatchPreservesUnrelatedKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	original := `{
  "name": "docs",
  "type": "module",
  "dependencies": {"astro": "^4.0.0"},
  "devDependencies": {"typescript": "^5.0.0", "http-server": "^0.1.0"},
  "scripts": {"build": "astro build", "start:tutorial": "old"},
  "engines": {"node": ">=18"}
}`
	require.NoError(t, afero.WriteFile(fs, path, []byte(original), 0644))

	require.NoError(t, Patch(fs, path, Options{}))

	pkg := readManifest(t, fs)
	assert.Equal(t, "module", pkg["type"])
	assert.Equal(t, map[string]interface{}{"astro": "^4.0.0"}, pkg["dependencies"])
	assert.Equal(t, map[string]interface{}{"node": ">=18"}, pkg["engines"])
	assert.Equal(t, map[string]interface{}{
		"typescript": "^5.0.0",
		StaticServer: StaticServerVersion,
	}, pkg["devDependencies"])
	assert.Equal(t, map[string]interface{}{
		"build":        "astro build",
		TutorialScript: TutorialScriptCommand,
	}, pkg["scripts"])
}

func TestPatchFormatting(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"name":"x"}`), 0644))

	require.NoError(t, Patch(fs, path, Options{PostInstall: true}))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "\n  \"name\": \"x\"")
	assert.Contains(t, out, `"cd project && npm install"`)
	assert.NotContains(t, out, `\u0026`)
}

func TestPatchIsStable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"name":"x","scripts":{"dev":"astro dev"}}`), 0644))

	require.NoError(t, Patch(fs, path, Options{LiveReload: true}))
	first, _ := afero.ReadFile(fs, path)
	require.NoError(t, Patch(fs, path, Options{LiveReload: true}))
	second, _ := afero.ReadFile(fs, path)

	assert.Equal(t, string(first), string(second))
}

func TestPatchErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Error(t, Patch(fs, path, Options{}))

	require.NoError(t, afero.WriteFile(fs, path, []byte(`not json`), 0644))
	assert.Error(t, Patch(fs, path, Options{}))

	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"scripts": ["a"]}`), 0644))
	assert.Error(t, Patch(fs, path, Options{}))

	require.NoError(t, afero.WriteFile(fs, path, []byte(`["a"]`), 0644))
	assert.Error(t, Patch(fs, path, Options{}))
}

func TestPatchKeepsKeyOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"name":"x","z":1,"a":[]}`), 0644))

	require.NoError(t, Patch(fs, path, Options{}))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "x",
  "z": 1,
  "a": [],
  "devDependencies": {
    "http-server": "^14.1.1"
  },
  "scripts": {
    "start:tutorial": "http-server steps -p 1234 --cors -c-1"
  }
}
`, string(data))
}

func TestPatchOverwritesEntriesInPlace(t *testing.T) {
	fs := afero.NewMemMapFs()
	original := `{"scripts":{"start:tutorial":"old","build":"astro build"},"name":"x","devDependencies":null}`
	require.NoError(t, afero.WriteFile(fs, path, []byte(original), 0644))

	require.NoError(t, Patch(fs, path, Options{PostInstall: true}))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "scripts": {
    "start:tutorial": "http-server steps -p 1234 --cors -c-1",
    "build": "astro build",
    "postinstall": "cd project && npm install"
  },
  "name": "x",
  "devDependencies": {
    "http-server": "^14.1.1"
  }
}
`, string(data))
}
