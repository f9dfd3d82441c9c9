package cli

import (
	"fmt"
	"io"

	"github.com/santiagomed/devtut/core"
	"github.com/santiagomed/devtut/logger"
)

// CliStepPublisher prints one line per pipeline step.
type CliStepPublisher struct {
	out    io.Writer
	logger logger.Logger
}

func NewCliStepPublisher(out io.Writer, logger logger.Logger) *CliStepPublisher {
	return &CliStepPublisher{out: out, logger: logger}
}

func (p *CliStepPublisher) PublishStep(result core.Result) {
	switch result.Outcome {
	case core.OutcomeOk:
		fmt.Fprintf(p.out, "%s %v\n", checkMark, result.Step)
	case core.OutcomeSkipped:
		fmt.Fprintf(p.out, "%s %v %s\n", skipMark, result.Step, mutedStyle.Render("("+result.Reason+")"))
	case core.OutcomeFailed:
		fmt.Fprintf(p.out, "%s %v: %s\n", warnMark, result.Step, result.Reason)
	}
	p.logger.Debug(fmt.Sprintf("Published step: %v (%v)", result.Step, result.Outcome))
}

func (p *CliStepPublisher) Error(step core.StepType, err error) {
	fmt.Fprintf(p.out, "%s %v: %v\n", crossMark, step, err)
	p.logger.Debug(fmt.Sprintf("Published error for step: %v", step))
}
