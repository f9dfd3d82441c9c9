package devcontainer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"

	"github.com/santiagomed/devtut/tutorial"
)

// DescriptorFile is the file name the Codespaces runtime looks for.
const DescriptorFile = "devcontainer.json"

const githubCLIFeature = "ghcr.io/devcontainers/features/github-cli:1"

// Descriptor is the devcontainer.json document. Field order is the output order.
type Descriptor struct {
	Name                 string                    `json:"name"`
	Image                string                    `json:"image"`
	WorkspaceFolder      string                    `json:"workspaceFolder"`
	WaitFor              string                    `json:"waitFor"`
	UpdateContentCommand string                    `json:"updateContentCommand"`
	PostCreateCommand    string                    `json:"postCreateCommand"`
	PostAttachCommand    string                    `json:"postAttachCommand"`
	ForwardPorts         []string                  `json:"forwardPorts"`
	Features             map[string]struct{}       `json:"features"`
	Customizations       Customizations            `json:"customizations"`
	PortsAttributes      map[string]PortAttributes `json:"portsAttributes"`
}

type Customizations struct {
	VSCode     VSCodeCustomizations     `json:"vscode"`
	Codespaces CodespacesCustomizations `json:"codespaces"`
}

type VSCodeCustomizations struct {
	Extensions []string       `json:"extensions"`
	Settings   VSCodeSettings `json:"settings"`
}

type VSCodeSettings struct {
	FormatOnSave bool            `json:"editor.formatOnSave"`
	FilesExclude map[string]bool `json:"files.exclude"`
}

type CodespacesCustomizations struct {
	OpenFiles []string `json:"openFiles"`
}

type PortAttributes struct {
	Label         string `json:"label"`
	OnAutoForward string `json:"onAutoForward"`
	Visibility    string `json:"visibility,omitempty"`
}

// Input is everything the descriptor is derived from.
type Input struct {
	Name     string
	RepoName string
	// TutorialsDir is the slash separated path of the tutorials folder
	// relative to the repository root.
	TutorialsDir       string
	Image              string
	Tutorial           *tutorial.Config
	HasExternalProject bool
	HasSetupScript     bool
}

// hiddenBaseline lists build and config artifacts hidden from the learner.
var hiddenBaseline = []string{
	"node_modules",
	"dist",
	"steps",
	".devcontainer",
	".vscode",
	"package.json",
	"package-lock.json",
	"tutorial-config.json",
	"tsconfig.json",
	"astro.config.mjs",
	".git",
	".DS_Store",
	"__MACOSX",
	"README.md",
	"markdoc.config.mjs",
}

// Build computes the descriptor. It has no side effects.
func Build(in Input) (*Descriptor, error) {
	cfg := in.Tutorial
	if cfg == nil {
		cfg = &tutorial.Config{}
	}

	command, err := Render(Plan(cfg, in.HasExternalProject, in.HasSetupScript))
	if err != nil {
		return nil, fmt.Errorf("failed to render startup command: %w", err)
	}

	ports, attrs := Ports(cfg, in.HasExternalProject)

	tutorialsDir := in.TutorialsDir
	if tutorialsDir == "" {
		tutorialsDir = "tutorials"
	}

	return &Descriptor{
		Name:                 "Tutorial: " + in.Name,
		Image:                in.Image,
		WorkspaceFolder:      path.Join("/workspaces", in.RepoName, tutorialsDir, in.Name),
		WaitFor:              "onCreateCommand",
		UpdateContentCommand: "npm install",
		PostCreateCommand:    "",
		PostAttachCommand:    command,
		ForwardPorts:         ports,
		Features:             map[string]struct{}{githubCLIFeature: {}},
		Customizations: Customizations{
			VSCode: VSCodeCustomizations{
				Extensions: []string{},
				Settings: VSCodeSettings{
					FormatOnSave: true,
					FilesExclude: HiddenFiles(cfg.Files, in.HasSetupScript),
				},
			},
			Codespaces: CodespacesCustomizations{
				OpenFiles: OpenFiles(cfg.Files, cfg.OpenFiles),
			},
		},
		PortsAttributes: attrs,
	}, nil
}

// Ports returns the forwarded ports, docs port first, and their attributes.
func Ports(cfg *tutorial.Config, hasExternalProject bool) ([]string, map[string]PortAttributes) {
	ports := []string{DocsPort}
	attrs := map[string]PortAttributes{
		DocsPort: {Label: "Tutorial Guide", OnAutoForward: "openPreview"},
	}

	if cfg.HasPanel(tutorial.PanelBrowser) {
		ports = append(ports, FrontendPort)
		attrs[FrontendPort] = PortAttributes{Label: "My Project Preview", OnAutoForward: "notify", Visibility: "public"}
	}
	if hasExternalProject {
		ports = append(ports, BackendPort)
		attrs[BackendPort] = PortAttributes{Label: "My Backend Service", OnAutoForward: "notify", Visibility: "public"}
	}
	return ports, attrs
}

// HiddenFiles builds the files.exclude map. Scaffolded files stay visible;
// the relocated setup script is hidden whenever it is active.
func HiddenFiles(scaffolded []string, hasSetupScript bool) map[string]bool {
	visible := make(map[string]bool, len(scaffolded))
	for _, f := range scaffolded {
		visible[f] = true
	}

	hidden := make(map[string]bool, len(hiddenBaseline)+1)
	for _, f := range hiddenBaseline {
		if !visible[f] {
			hidden[f] = true
		}
	}
	if hasSetupScript {
		hidden[path.Join(ProjectDir, SetupScript)] = true
	}
	return hidden
}

// OpenFiles merges scaffolded and requested files, keeping first occurrence
// order and leaving out the README.
func OpenFiles(scaffolded, requested []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range [][]string{scaffolded, requested} {
		for _, f := range list {
			if f == "README.md" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Marshal encodes the descriptor with four space indentation. Identical
// descriptors always produce identical bytes.
func Marshal(d *Descriptor) ([]byte, error) {
	return encode(d)
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
