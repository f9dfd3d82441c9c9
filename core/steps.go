package core

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/santiagomed/devtut/config"
	"github.com/santiagomed/devtut/devcontainer"
	"github.com/santiagomed/devtut/manifest"
	"github.com/santiagomed/devtut/readme"
	"github.com/santiagomed/devtut/shell"
	"github.com/santiagomed/devtut/tutorial"
	"github.com/santiagomed/devtut/utils"
)

const (
	archiveExt   = ".zip"
	stepsDir     = "steps"
	legacySetup  = "setup-tutorial.js"
	cloneTempDir = "clone"
)

// junkDirs are created by archiving tools and never hold the project.
var junkDirs = map[string]bool{
	"__MACOSX": true,
}

type StepManager interface {
	GetSteps() []StepType
	GetStep(step StepType) Step
	Policy(step StepType) Policy
}

type DefaultStepManager struct {
	steps    []StepType
	stepMap  map[StepType]Step
	policies map[StepType]Policy
}

func NewStepManager() *DefaultStepManager {
	return &DefaultStepManager{
		stepMap:  make(map[StepType]Step),
		policies: make(map[StepType]Policy),
	}
}

// AddStep appends a step. Adding the same type twice replaces the step but
// keeps its original position.
func (m *DefaultStepManager) AddStep(stepType StepType, step Step, policy Policy) {
	if _, ok := m.stepMap[stepType]; !ok {
		m.steps = append(m.steps, stepType)
	}
	m.stepMap[stepType] = step
	m.policies[stepType] = policy
}

func (m *DefaultStepManager) GetSteps() []StepType {
	return m.steps
}

func (m *DefaultStepManager) GetStep(stepType StepType) Step {
	return m.stepMap[stepType]
}

func (m *DefaultStepManager) Policy(stepType StepType) Policy {
	return m.policies[stepType]
}

// NewDefaultStepManager registers the full archive to environment pipeline.
func NewDefaultStepManager(cfg *config.Config) *DefaultStepManager {
	m := NewStepManager()
	m.AddStep(LocateArchive, &LocateArchiveStep{}, Fatal)
	m.AddStep(ResetWorkspace, &ResetWorkspaceStep{}, Fatal)
	m.AddStep(ExtractArchive, &ExtractArchiveStep{}, Fatal)
	m.AddStep(LocateProjectRoot, &LocateProjectRootStep{}, Fatal)
	m.AddStep(LoadTutorialConfig, &LoadTutorialConfigStep{}, Fatal)
	m.AddStep(FetchExternalSource, &FetchExternalSourceStep{}, Recoverable)
	m.AddStep(MigrateSetupScript, &MigrateSetupScriptStep{}, Recoverable)
	m.AddStep(PatchManifest, &PatchManifestStep{}, Recoverable)
	m.AddStep(BuildSite, &BuildSiteStep{}, Recoverable)
	m.AddStep(ScaffoldFiles, &ScaffoldFilesStep{}, Recoverable)
	if cfg != nil && cfg.VSCodeTasks {
		m.AddStep(GenerateTasks, &GenerateTasksStep{}, Recoverable)
	}
	m.AddStep(GenerateDevcontainer, &GenerateDevcontainerStep{}, Fatal)
	m.AddStep(GenerateReadme, &GenerateReadmeStep{}, Recoverable)
	m.AddStep(Cleanup, &CleanupStep{}, Recoverable)
	return m
}

type LocateArchiveStep struct{}

func (s *LocateArchiveStep) Execute(ctx context.Context, state *State) error {
	archive := state.Request.Archive
	if archive == "" {
		uploads := state.Config.UploadsPath()
		if !state.Fs.IsDir(uploads) {
			return fmt.Errorf("%w: no uploads directory at %s", ErrNoArchive, uploads)
		}
		zips, err := state.Fs.ListFiles(uploads, archiveExt)
		if err != nil {
			return fmt.Errorf("failed to list uploads: %w", err)
		}
		if len(zips) == 0 {
			return fmt.Errorf("%w: no zip files in %s", ErrNoArchive, uploads)
		}
		archive = filepath.Join(uploads, zips[0])
		for _, z := range zips[1:] {
			state.PendingArchives = append(state.PendingArchives, filepath.Join(uploads, z))
		}
		if len(state.PendingArchives) > 0 {
			state.Logger.Warn(fmt.Sprintf("%d more archive(s) left for the next run: %s",
				len(state.PendingArchives), strings.Join(zips[1:], ", ")))
		}
	} else if !state.Fs.IsFile(archive) {
		return fmt.Errorf("archive %s not found", archive)
	}

	base := filepath.Base(archive)
	name := utils.SanitizeName(strings.TrimSuffix(base, archiveExt))
	if name == "" {
		return fmt.Errorf("archive name %q has no usable characters", base)
	}

	state.ArchivePath = archive
	state.TutorialName = name
	state.WorkspaceDir = filepath.Join(state.Config.TutorialsPath(), name)
	state.ProjectDir = filepath.Join(state.WorkspaceDir, devcontainer.ProjectDir)
	state.Logger.Info(fmt.Sprintf("Processing tutorial: %s", name))
	return nil
}

// ResetWorkspaceStep deletes the tutorial's workspace and recreates it
// empty. Nothing from a previous run survives it.
type ResetWorkspaceStep struct{}

func (s *ResetWorkspaceStep) Execute(ctx context.Context, state *State) error {
	if err := state.Fs.ResetDir(state.WorkspaceDir); err != nil {
		return fmt.Errorf("failed to reset workspace: %w", err)
	}
	return nil
}

type ExtractArchiveStep struct{}

func (s *ExtractArchiveStep) Execute(ctx context.Context, state *State) error {
	if err := state.Fs.ExtractZip(state.ArchivePath, state.WorkspaceDir); err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	state.Logger.Info("Extraction complete")
	return nil
}

type LocateProjectRootStep struct{}

func (s *LocateProjectRootStep) Execute(ctx context.Context, state *State) error {
	ws := state.WorkspaceDir
	if state.Fs.IsFile(filepath.Join(ws, manifest.File)) {
		return nil
	}

	state.Logger.Info(fmt.Sprintf("%s not found at root, checking for a nested directory", manifest.File))
	dirs, err := state.Fs.ListDirs(ws)
	if err != nil {
		return fmt.Errorf("failed to list workspace: %w", err)
	}
	var candidates []string
	for _, d := range dirs {
		if !junkDirs[d] {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) != 1 {
		return fmt.Errorf("%w: %d candidate directories in %s", ErrManifestNotFound, len(candidates), ws)
	}

	nested := filepath.Join(ws, candidates[0])
	if !state.Fs.IsFile(filepath.Join(nested, manifest.File)) {
		return fmt.Errorf("%w: not in %s either", ErrManifestNotFound, candidates[0])
	}

	state.Logger.Info(fmt.Sprintf("Found nested root in '%s', flattening", candidates[0]))
	if err := flatten(state, nested); err != nil {
		return fmt.Errorf("failed to flatten %s: %w", candidates[0], err)
	}
	if !state.Fs.IsFile(filepath.Join(ws, manifest.File)) {
		return fmt.Errorf("%w: after flattening %s", ErrManifestNotFound, candidates[0])
	}
	return nil
}

// flatten lifts the content of nested into the workspace root. The content
// is staged outside the workspace first so that a child with the same name
// as nested is not removed along with it.
func flatten(state *State, nested string) error {
	staging := filepath.Join(filepath.Dir(state.WorkspaceDir), "."+state.TutorialName+"-"+uuid.NewString())
	defer state.Fs.RemoveAll(staging)

	if err := state.Fs.MoveDir(nested, staging); err != nil {
		return err
	}
	return state.Fs.CopyDir(staging, state.WorkspaceDir, true)
}

type LoadTutorialConfigStep struct{}

func (s *LoadTutorialConfigStep) Execute(ctx context.Context, state *State) error {
	cfg, err := tutorial.Load(state.Fs.Fs, filepath.Join(state.WorkspaceDir, tutorial.ConfigFile))
	if err != nil {
		return err
	}
	state.Tutorial = cfg
	return nil
}

// FetchExternalSourceStep clones the configured repository into the project
// folder. Files already in the project folder win over cloned ones.
type FetchExternalSourceStep struct{}

func (s *FetchExternalSourceStep) Execute(ctx context.Context, state *State) error {
	if err := state.Fs.EnsureDir(state.ProjectDir); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if !state.Tutorial.HasRepository() {
		return skip("no repository configured")
	}

	repo := state.Tutorial.Repository
	state.Logger.Info(fmt.Sprintf("Cloning external source: %s", repo))

	tmp, err := state.TempDir.CreateTempDir(cloneTempDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := state.TempDir.RemoveTempDir(cloneTempDir); err != nil {
			state.Logger.Warn(err.Error())
		}
	}()

	if err := state.Runner.Run(ctx, tmp, "git", "clone", repo, "."); err != nil {
		return fmt.Errorf("failed to clone external repository: %w", err)
	}
	if err := state.Fs.RemoveAll(filepath.Join(tmp, ".git")); err != nil {
		return fmt.Errorf("failed to remove git metadata: %w", err)
	}
	if err := state.Fs.CopyDir(tmp, state.ProjectDir, false); err != nil {
		return fmt.Errorf("failed to copy external source: %w", err)
	}

	state.HasExternalProject = true
	state.Logger.Info("External code cloned into the project folder")
	return nil
}

// MigrateSetupScriptStep moves a non-empty setup script into the project
// folder. The legacy name is checked first and only one script is handled.
type MigrateSetupScriptStep struct{}

func (s *MigrateSetupScriptStep) Execute(ctx context.Context, state *State) error {
	var src string
	for _, name := range []string{legacySetup, devcontainer.SetupScript} {
		if p := filepath.Join(state.WorkspaceDir, name); state.Fs.IsFile(p) {
			src = p
			break
		}
	}
	if src == "" {
		return skip("no setup script")
	}

	content, err := state.Fs.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read setup script: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		if err := state.Fs.Remove(src); err != nil {
			return fmt.Errorf("failed to remove empty setup script: %w", err)
		}
		state.Logger.Info("Setup script is empty, skipping setup steps")
		return nil
	}

	if err := state.Fs.EnsureDir(state.ProjectDir); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := state.Fs.MoveFile(src, filepath.Join(state.ProjectDir, devcontainer.SetupScript)); err != nil {
		return fmt.Errorf("failed to move setup script: %w", err)
	}
	state.HasSetupScript = true
	state.Logger.Info("Found active setup script, moved into the project folder")
	return nil
}

type PatchManifestStep struct{}

func (s *PatchManifestStep) Execute(ctx context.Context, state *State) error {
	p := filepath.Join(state.WorkspaceDir, manifest.File)
	if !state.Fs.IsFile(p) {
		return skip("no %s", manifest.File)
	}
	opts := manifest.Options{
		LiveReload:  state.Tutorial.HasPanel(tutorial.PanelBrowser) && !state.HasExternalProject,
		PostInstall: state.HasExternalProject,
	}
	if err := manifest.Patch(state.Fs.Fs, p, opts); err != nil {
		return err
	}
	state.Logger.Info("Root package.json configured")
	return nil
}

// BuildSiteStep builds the documentation site and moves its output to steps.
type BuildSiteStep struct{}

func (s *BuildSiteStep) Execute(ctx context.Context, state *State) error {
	state.Logger.Info("Building documentation site")
	if err := shell.Script(ctx, state.Runner, state.WorkspaceDir, state.Config.BuildCommand); err != nil {
		return fmt.Errorf("failed to build site: %w", err)
	}

	out := filepath.Join(state.WorkspaceDir, filepath.FromSlash(state.Config.BuildOutput))
	if !state.Fs.IsDir(out) {
		state.Logger.Warn(fmt.Sprintf("Build finished but '%s' folder was not found", state.Config.BuildOutput))
		return nil
	}

	dst := filepath.Join(state.WorkspaceDir, stepsDir)
	if err := state.Fs.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to clear %s: %w", stepsDir, err)
	}
	if err := state.Fs.MoveDir(out, dst); err != nil {
		return fmt.Errorf("failed to move build output: %w", err)
	}
	state.Logger.Info("Build successful, output moved to steps")
	return nil
}

// ScaffoldFilesStep writes a placeholder for every configured file.
// Existing files are overwritten.
type ScaffoldFilesStep struct{}

func (s *ScaffoldFilesStep) Execute(ctx context.Context, state *State) error {
	if len(state.Tutorial.Files) == 0 {
		return skip("no files to scaffold")
	}
	for _, f := range state.Tutorial.Files {
		rel := utils.SanitizeFilePath(f)
		if rel == "" || rel != path.Clean(filepath.ToSlash(f)) {
			state.Logger.Warn(fmt.Sprintf("Skipping placeholder outside the workspace: %s", f))
			continue
		}
		if err := state.Fs.WriteFile(filepath.Join(state.WorkspaceDir, filepath.FromSlash(rel)), []byte("\n")); err != nil {
			return fmt.Errorf("failed to create placeholder %s: %w", f, err)
		}
		state.Logger.Debug(fmt.Sprintf("Created placeholder: %s", f))
	}
	return nil
}

// GenerateTasksStep adds an editor task that starts the tutorial server
// when the folder is opened.
type GenerateTasksStep struct{}

func (s *GenerateTasksStep) Execute(ctx context.Context, state *State) error {
	data, err := devcontainer.MarshalTasks(devcontainer.StartTasks(manifest.TutorialScript))
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	p := filepath.Join(state.WorkspaceDir, ".vscode", devcontainer.TasksFile)
	if err := state.Fs.WriteFile(p, data); err != nil {
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	return nil
}

type GenerateDevcontainerStep struct{}

func (s *GenerateDevcontainerStep) Execute(ctx context.Context, state *State) error {
	d, err := devcontainer.Build(devcontainer.Input{
		Name:               state.TutorialName,
		RepoName:           state.Config.RepoName(),
		TutorialsDir:       filepath.ToSlash(state.Config.TutorialsDir),
		Image:              state.Config.Image,
		Tutorial:           state.Tutorial,
		HasExternalProject: state.HasExternalProject,
		HasSetupScript:     state.HasSetupScript,
	})
	if err != nil {
		return err
	}
	data, err := devcontainer.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode devcontainer: %w", err)
	}

	p := filepath.Join(state.Config.DevcontainerPath(), state.TutorialName, devcontainer.DescriptorFile)
	if err := state.Fs.WriteFile(p, data); err != nil {
		return fmt.Errorf("failed to write devcontainer: %w", err)
	}
	state.Logger.Info(fmt.Sprintf("Generated %s", p))
	return nil
}

type GenerateReadmeStep struct{}

func (s *GenerateReadmeStep) Execute(ctx context.Context, state *State) error {
	content, err := readme.Render(readme.Params{
		Name:            state.TutorialName,
		Owner:           state.Config.RepoOwner,
		Repo:            state.Config.RepoName(),
		TutorialsDir:    filepath.ToSlash(state.Config.TutorialsDir),
		DevcontainerDir: filepath.ToSlash(state.Config.DevcontainerDir),
	})
	if err != nil {
		return err
	}
	if err := state.Fs.WriteFile(filepath.Join(state.WorkspaceDir, readme.File), []byte(content)); err != nil {
		return fmt.Errorf("failed to write readme: %w", err)
	}
	return nil
}

// CleanupStep removes the consumed archive.
type CleanupStep struct{}

func (s *CleanupStep) Execute(ctx context.Context, state *State) error {
	if err := state.Fs.Remove(state.ArchivePath); err != nil {
		return fmt.Errorf("failed to remove archive: %w", err)
	}
	state.Logger.Info("Cleanup complete, archive removed")
	return nil
}
