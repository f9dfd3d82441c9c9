package core

import (
	"github.com/santiagomed/devtut/config"
	"github.com/santiagomed/devtut/fs"
	"github.com/santiagomed/devtut/shell"
)

// Request describes a single processing run.
type Request struct {
	RunID  string
	Config *config.Config
	Fs     *fs.FileSystem
	// Runner executes git and the site build. Nil means child processes
	// attached to the console.
	Runner shell.Runner
	// Archive selects a specific zip instead of the first one in the
	// uploads directory.
	Archive string
}

func NewRequest(runID string, cfg *config.Config, fs *fs.FileSystem, runner shell.Runner) *Request {
	return &Request{
		RunID:  runID,
		Config: cfg,
		Fs:     fs,
		Runner: runner,
	}
}
