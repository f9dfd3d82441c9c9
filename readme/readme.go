// Package readme renders the per-tutorial README with a Codespaces launch link.
package readme

import (
	"bytes"
	"fmt"
	"path"
	"text/template"

	"github.com/santiagomed/devtut/devcontainer"
)

// File is written at the workspace root.
const File = "README.md"

const badgeImage = "https://github.com/codespaces/badge.svg"

// Params are the values substituted into the README.
type Params struct {
	Name  string
	Owner string
	Repo  string
	// TutorialsDir is the slash separated tutorials folder, "tutorials" if empty.
	TutorialsDir string
	// DevcontainerDir holds the per-tutorial descriptors, ".devcontainer" if empty.
	DevcontainerDir string
}

// Workspace returns the workspace location relative to the repository root.
func (p Params) Workspace() string {
	dir := p.TutorialsDir
	if dir == "" {
		dir = "tutorials"
	}
	return path.Join(dir, p.Name)
}

// Link returns the launch link for these params.
func (p Params) Link() string {
	dir := p.DevcontainerDir
	if dir == "" {
		dir = ".devcontainer"
	}
	return DeepLink(p.Owner, p.Repo, path.Join(dir, p.Name, devcontainer.DescriptorFile))
}

// Badge returns the image URL of the launch button.
func (p Params) Badge() string {
	return badgeImage
}

// DeepLink points Codespaces at a devcontainer descriptor, given relative to
// the repository root.
func DeepLink(owner, repo, descriptor string) string {
	return fmt.Sprintf("https://codespaces.new/%s/%s?devcontainer_path=%s", owner, repo, descriptor)
}

var tmpl = template.Must(template.New("readme").Parse(`
# {{.Name}}

This tutorial environment has been automatically generated.

## Start Learning
Click the button below to launch a configured Codespace for this tutorial.

[![Open in GitHub Codespaces]({{.Badge}})]({{.Link}})

### Environment Details
- **Tutorial Steps**: Available in the preview pane (Port 1234).
- **Your Workspace**: Located in ` + "`{{.Workspace}}`" + `.
- **Project Code**: Located in ` + "`{{.Workspace}}/project`" + `.
    `))

// Render produces the README text.
func Render(p Params) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to render readme: %w", err)
	}
	return buf.String(), nil
}
