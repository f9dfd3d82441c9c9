package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/santiagomed/devtut/config"
	"github.com/santiagomed/devtut/fs"
	"github.com/santiagomed/devtut/logger"
	"github.com/santiagomed/devtut/shell"
	"github.com/santiagomed/devtut/tempdir"
	"github.com/santiagomed/devtut/tutorial"
)

type Step interface {
	Execute(ctx context.Context, state *State) error
}

type StepType int

const (
	LocateArchive StepType = iota
	ResetWorkspace
	ExtractArchive
	LocateProjectRoot
	LoadTutorialConfig
	FetchExternalSource
	MigrateSetupScript
	PatchManifest
	BuildSite
	ScaffoldFiles
	GenerateTasks
	GenerateDevcontainer
	GenerateReadme
	Cleanup
	Done
)

var stepNames = map[StepType]string{
	LocateArchive:        "locate archive",
	ResetWorkspace:       "reset workspace",
	ExtractArchive:       "extract archive",
	LocateProjectRoot:    "locate project root",
	LoadTutorialConfig:   "load tutorial config",
	FetchExternalSource:  "fetch external source",
	MigrateSetupScript:   "migrate setup script",
	PatchManifest:        "patch manifest",
	BuildSite:            "build site",
	ScaffoldFiles:        "scaffold files",
	GenerateTasks:        "generate tasks",
	GenerateDevcontainer: "generate devcontainer",
	GenerateReadme:       "generate readme",
	Cleanup:              "cleanup",
	Done:                 "done",
}

func (s StepType) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// State is shared by every step of a run. Steps read the artifacts of
// earlier steps and fill in their own.
type State struct {
	Request *Request
	Config  *config.Config
	Fs      *fs.FileSystem
	Runner  shell.Runner
	TempDir *tempdir.Manager
	Logger  logger.Logger

	ArchivePath     string
	PendingArchives []string
	TutorialName    string
	WorkspaceDir    string
	ProjectDir      string
	Tutorial        *tutorial.Config

	HasExternalProject bool
	HasSetupScript     bool

	Results []Result
}

// Result returns the recorded result of step, if it ran.
func (s *State) Result(step StepType) (Result, bool) {
	for _, r := range s.Results {
		if r.Step == step {
			return r, true
		}
	}
	return Result{}, false
}

type Pipeline struct {
	stepManager StepManager
	state       *State
	publisher   StepPublisher
}

func NewPipeline(r *Request, sm StepManager, pub StepPublisher, l logger.Logger) (*Pipeline, error) {
	if r == nil || r.Config == nil {
		return nil, errors.New("request with configuration is required")
	}
	if r.Fs == nil {
		return nil, errors.New("request file system is required")
	}
	if l == nil {
		l = logger.NewNullLogger()
	}
	if pub == nil {
		pub = &DefaultStepPublisher{}
	}
	runner := r.Runner
	if runner == nil {
		runner = shell.NewExecRunner()
	}
	return &Pipeline{
		state: &State{
			Request: r,
			Config:  r.Config,
			Fs:      r.Fs,
			Runner:  runner,
			TempDir: tempdir.NewManager(r.Fs.Fs, r.Config.TempDir),
			Logger:  l,
		},
		publisher:   pub,
		stepManager: sm,
	}, nil
}

// State exposes the run state, mainly for reporting after Execute returns.
func (p *Pipeline) State() *State {
	return p.state
}

// Execute runs every registered step in order. A step that fails under the
// Fatal policy stops the run and its error is returned. Recoverable failures
// are recorded and the run continues. ErrNoArchive ends the run early
// without an error.
func (p *Pipeline) Execute(ctx context.Context) error {
	steps := p.stepManager.GetSteps()
	p.state.Logger.Info("Starting pipeline execution")
	defer func() {
		if err := p.state.TempDir.Cleanup(); err != nil {
			p.state.Logger.Warn(fmt.Sprintf("Failed to clean temporary directories: %v", err))
		}
	}()

	for i, stepType := range steps {
		if err := ctx.Err(); err != nil {
			p.state.Logger.Info("Pipeline execution cancelled")
			return err
		}

		p.state.Logger.Debug(fmt.Sprintf("Attempting to execute step %d: %v", i, stepType))
		step := p.stepManager.GetStep(stepType)
		if step == nil {
			err := fmt.Errorf("step %v not found", stepType)
			p.state.Logger.Error(err.Error())
			p.publisher.Error(stepType, err)
			return err
		}

		startTime := time.Now()
		err := step.Execute(ctx, p.state)
		duration := time.Since(startTime)

		var skip *SkipError
		switch {
		case err == nil:
			p.record(Ok(stepType))
			p.state.Logger.Debug(fmt.Sprintf("Step %v completed in %v", stepType, duration))
		case errors.Is(err, ErrNoArchive):
			p.record(Skipped(stepType, err.Error()))
			p.state.Logger.Info("No archive to process")
			return nil
		case errors.As(err, &skip):
			p.record(Skipped(stepType, skip.Reason))
			p.state.Logger.Debug(fmt.Sprintf("Step %v skipped: %s", stepType, skip.Reason))
		case p.stepManager.Policy(stepType) == Fatal:
			p.state.Results = append(p.state.Results, Failed(stepType, err))
			p.state.Logger.Error(fmt.Sprintf("Error executing step %v: %v", stepType, err))
			p.publisher.Error(stepType, err)
			return fmt.Errorf("%v: %w", stepType, err)
		default:
			p.record(Failed(stepType, err))
			p.state.Logger.Warn(fmt.Sprintf("Step %v failed, continuing: %v", stepType, err))
		}

		if i < len(steps)-1 {
			p.state.Logger.Debug(fmt.Sprintf("Transitioning from step %v to step %v", stepType, steps[i+1]))
		}
	}

	p.record(Ok(Done))
	p.state.Logger.Info("Pipeline execution completed")
	return nil
}

func (p *Pipeline) record(r Result) {
	p.state.Results = append(p.state.Results, r)
	p.publisher.PublishStep(r)
}

// StepPublisher receives progress as the pipeline runs. Error is called
// once for the fatal failure that ends a run.
type StepPublisher interface {
	PublishStep(result Result)
	Error(step StepType, err error)
}

type DefaultStepPublisher struct{}

func (p *DefaultStepPublisher) PublishStep(result Result) {}

func (p *DefaultStepPublisher) Error(step StepType, err error) {}
