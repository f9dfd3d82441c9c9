package core

import (
	"context"

	"github.com/santiagomed/devtut/logger"
)

// Engine runs the default pipeline for a request.
type Engine struct {
	pub    StepPublisher
	logger logger.Logger
}

func NewEngine(pub StepPublisher, l logger.Logger) *Engine {
	if l == nil {
		l = logger.NewNullLogger()
	}
	return &Engine{pub: pub, logger: l}
}

// Process runs one archive through the pipeline. The returned state is
// non-nil whenever the pipeline could be created, even if the run failed.
func (e *Engine) Process(ctx context.Context, r *Request) (*State, error) {
	l := e.logger
	if r != nil && r.RunID != "" {
		l = l.WithField("run", r.RunID)
	}
	var sm StepManager
	if r != nil {
		sm = NewDefaultStepManager(r.Config)
	}
	pipeline, err := NewPipeline(r, sm, e.pub, l)
	if err != nil {
		return nil, err
	}
	err = pipeline.Execute(ctx)
	return pipeline.State(), err
}
