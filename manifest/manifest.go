// Package manifest patches the tutorial's package.json with the tooling the
// generated container relies on.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// File is the project manifest marking a valid project root.
const File = "package.json"

const (
	StaticServer        = "http-server"
	StaticServerVersion = "^14.1.1"
	LiveServer          = "live-server"
	LiveServerVersion   = "^1.2.2"

	TutorialScript        = "start:tutorial"
	TutorialScriptCommand = "http-server steps -p 1234 --cors -c-1"
	PostInstallScript     = "postinstall"
	PostInstallCommand    = "cd project && npm install"
)

// Options selects the conditional entries.
type Options struct {
	// LiveReload adds the live-reload dev server.
	LiveReload bool
	// PostInstall installs the external project's dependencies after the root install.
	PostInstall bool
}

type entry struct {
	section, key, value string
}

// Patch adds or overwrites the dev dependencies and scripts the tutorial
// needs. Every other key in the manifest is kept where the author put it,
// new keys are appended to their object.
func Patch(fs afero.Fs, path string, opts Options) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("failed to parse manifest: %s is not valid JSON", path)
	}
	root := gjson.ParseBytes(data)
	switch {
	case root.Type == gjson.Null:
		data = []byte("{}")
	case !root.IsObject():
		return fmt.Errorf("failed to parse manifest: %s is not an object", path)
	}

	entries := []entry{{"devDependencies", StaticServer, StaticServerVersion}}
	if opts.LiveReload {
		entries = append(entries, entry{"devDependencies", LiveServer, LiveServerVersion})
	}
	entries = append(entries, entry{"scripts", TutorialScript, TutorialScriptCommand})
	if opts.PostInstall {
		entries = append(entries, entry{"scripts", PostInstallScript, PostInstallCommand})
	}

	for _, section := range []string{"devDependencies", "scripts"} {
		if data, err = ensureObject(data, section); err != nil {
			return err
		}
	}
	for _, e := range entries {
		value, err := encode(e.value)
		if err != nil {
			return err
		}
		if data, err = sjson.SetRawBytes(data, e.section+"."+escape(e.key), value); err != nil {
			return fmt.Errorf("failed to set %s.%s: %w", e.section, e.key, err)
		}
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	out.WriteByte('\n')
	if err := afero.WriteFile(fs, path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ensureObject makes sure key holds an object, creating it when absent or null.
func ensureObject(data []byte, key string) ([]byte, error) {
	v := gjson.GetBytes(data, escape(key))
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return sjson.SetRawBytes(data, escape(key), []byte("{}"))
	case !v.IsObject():
		return nil, fmt.Errorf("manifest %s is not an object", key)
	}
	return data, nil
}

// escape quotes the path characters gjson and sjson treat specially.
func escape(key string) string {
	var b bytes.Buffer
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// encode marshals a string without HTML escaping so shell operators in
// scripts stay readable.
func encode(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
