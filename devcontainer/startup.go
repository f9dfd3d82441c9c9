package devcontainer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santiagomed/devtut/tutorial"
)

const (
	DocsPort     = "1234"
	FrontendPort = "8080"
	BackendPort  = "3000"

	// ProjectDir holds the external project and the setup script.
	ProjectDir  = "project"
	SetupScript = "setup-project.js"

	announceDelay   = 4 * time.Second
	visibilityDelay = 5 * time.Second
)

var (
	docsServerCommand = "./node_modules/.bin/http-server steps -p " + DocsPort + " --cors -c-1"
	liveServerCommand = "./node_modules/.bin/live-server --port=" + FrontendPort + " --no-browser"
)

// StartupStep is one element of the command chain run when the editor attaches.
type StartupStep interface {
	startupStep()
}

// BackgroundService starts a long running process detached and silenced.
type BackgroundService struct {
	Command string
}

// BackgroundJob starts a process as a job of the attach shell, silenced.
// It ends with the shell, so the chain must block afterwards.
type BackgroundJob struct {
	Command string
}

// ChangeDirectory switches the working directory for the rest of the chain.
type ChangeDirectory struct {
	Dir string
}

// RunSynchronous runs a command to completion. A failure stops the chain.
type RunSynchronous struct {
	Command string
}

// ScheduleDelayedAnnouncement prints Message after Delay without blocking.
type ScheduleDelayedAnnouncement struct {
	Delay   time.Duration
	Message string
}

// ScheduleDelayedCommand runs Command after Delay, detached and silenced.
type ScheduleDelayedCommand struct {
	Delay   time.Duration
	Command string
}

// RunForeground runs the final blocking command. Must be last.
type RunForeground struct {
	Command string
}

// BlockForever keeps the container's attach command alive. Must be last.
type BlockForever struct{}

func (BackgroundService) startupStep()           {}
func (BackgroundJob) startupStep()               {}
func (ChangeDirectory) startupStep()             {}
func (RunSynchronous) startupStep()              {}
func (ScheduleDelayedAnnouncement) startupStep() {}
func (ScheduleDelayedCommand) startupStep()      {}
func (RunForeground) startupStep()               {}
func (BlockForever) startupStep()                {}

// Plan decides which services the container starts when attached.
func Plan(cfg *tutorial.Config, hasExternalProject, hasSetupScript bool) []StartupStep {
	steps := []StartupStep{BackgroundService{Command: docsServerCommand}}

	switch {
	case hasSetupScript:
		steps = append(steps,
			RunSynchronous{Command: "echo ''"},
			ChangeDirectory{Dir: ProjectDir},
			RunSynchronous{Command: "node " + SetupScript},
		)
	case hasExternalProject:
		steps = append(steps, ChangeDirectory{Dir: ProjectDir})
	}

	switch {
	case hasExternalProject:
		steps = append(steps,
			ScheduleDelayedAnnouncement{Delay: announceDelay, Message: readyMessage("APPLICATION READY", BackendPort)},
			ScheduleDelayedCommand{Delay: visibilityDelay, Command: visibilityCommand(BackendPort)},
			RunForeground{Command: "npm start"},
		)
	case cfg.HasPanel(tutorial.PanelBrowser) && !hasSetupScript:
		steps = append(steps,
			ScheduleDelayedCommand{Delay: visibilityDelay, Command: visibilityCommand(FrontendPort)},
			ScheduleDelayedAnnouncement{Delay: announceDelay, Message: readyMessage("PREVIEW READY", FrontendPort)},
			BackgroundJob{Command: liveServerCommand},
			BlockForever{},
		)
	default:
		steps = append(steps, BlockForever{})
	}
	return steps
}

func readyMessage(title, port string) string {
	return fmt.Sprintf("\n\n🚀 %s:\nhttps://${CODESPACE_NAME}-%s.app.github.dev\n\n", title, port)
}

func visibilityCommand(port string) string {
	return fmt.Sprintf("gh codespace ports visibility %s:public -c $CODESPACE_NAME", port)
}

var (
	ErrEmptyPlan        = errors.New("startup plan is empty")
	ErrUnterminatedPlan = errors.New("startup plan must end with a blocking step")
	ErrTerminalNotLast  = errors.New("blocking step must be the last step")
)

// Render serializes steps into a single POSIX shell command line.
func Render(steps []StartupStep) (string, error) {
	if len(steps) == 0 {
		return "", ErrEmptyPlan
	}

	var b strings.Builder
	for i, step := range steps {
		last := i == len(steps)-1
		switch s := step.(type) {
		case BackgroundService:
			fmt.Fprintf(&b, "nohup %s > /dev/null 2>&1 & ", s.Command)
		case BackgroundJob:
			fmt.Fprintf(&b, "%s > /dev/null 2>&1 & ", s.Command)
		case ChangeDirectory:
			fmt.Fprintf(&b, "cd %s && ", s.Dir)
		case RunSynchronous:
			fmt.Fprintf(&b, "%s && ", s.Command)
		case ScheduleDelayedAnnouncement:
			fmt.Fprintf(&b, `(sleep %d && echo -e "%s" &) && `, seconds(s.Delay), strings.ReplaceAll(s.Message, "\n", `\n`))
		case ScheduleDelayedCommand:
			fmt.Fprintf(&b, `(nohup sh -c "sleep %d && %s" > /dev/null 2>&1 &) && `, seconds(s.Delay), s.Command)
		case RunForeground:
			if !last {
				return "", ErrTerminalNotLast
			}
			b.WriteString(s.Command)
		case BlockForever:
			if !last {
				return "", ErrTerminalNotLast
			}
			b.WriteString("wait")
		default:
			return "", fmt.Errorf("unknown startup step %T", step)
		}
	}

	switch steps[len(steps)-1].(type) {
	case RunForeground, BlockForever:
		return b.String(), nil
	default:
		return "", ErrUnterminatedPlan
	}
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
