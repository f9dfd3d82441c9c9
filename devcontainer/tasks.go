package devcontainer

// TasksFile is written under the workspace's .vscode folder.
const TasksFile = "tasks.json"

type Tasks struct {
	Version string `json:"version"`
	Tasks   []Task `json:"tasks"`
}

type Task struct {
	Label          string         `json:"label"`
	Type           string         `json:"type"`
	Script         string         `json:"script"`
	IsBackground   bool           `json:"isBackground"`
	ProblemMatcher ProblemMatcher `json:"problemMatcher"`
	Presentation   Presentation   `json:"presentation"`
	RunOptions     RunOptions     `json:"runOptions"`
}

type ProblemMatcher struct {
	Owner      string            `json:"owner"`
	Pattern    map[string]string `json:"pattern"`
	Background TaskBackground    `json:"background"`
}

type TaskBackground struct {
	ActiveOnStart bool   `json:"activeOnStart"`
	BeginsPattern string `json:"beginsPattern"`
	EndsPattern   string `json:"endsPattern"`
}

type Presentation struct {
	Reveal string `json:"reveal"`
	Panel  string `json:"panel"`
	Group  string `json:"group"`
}

type RunOptions struct {
	RunOn string `json:"runOn"`
}

// StartTasks returns a task list that runs the given npm script in a
// dedicated terminal as soon as the folder is opened.
func StartTasks(script string) *Tasks {
	return &Tasks{
		Version: "2.0.0",
		Tasks: []Task{{
			Label:        "Start Tutorial Environment",
			Type:         "npm",
			Script:       script,
			IsBackground: true,
			ProblemMatcher: ProblemMatcher{
				Owner:   "custom",
				Pattern: map[string]string{"regexp": "^$"},
				Background: TaskBackground{
					ActiveOnStart: true,
					BeginsPattern: "Starting up",
					EndsPattern:   "Available on",
				},
			},
			Presentation: Presentation{Reveal: "always", Panel: "dedicated", Group: "terminals"},
			RunOptions:   RunOptions{RunOn: "folderOpen"},
		}},
	}
}

// MarshalTasks encodes tasks the same way as the descriptor.
func MarshalTasks(t *Tasks) ([]byte, error) {
	return encode(t)
}
