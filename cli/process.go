package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/santiagomed/devtut/core"
	"github.com/santiagomed/devtut/fs"
	"github.com/santiagomed/devtut/logger"
	"github.com/santiagomed/devtut/shell"
	"github.com/spf13/cobra"
)

type processFlags struct {
	archive string
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Turn the next uploaded archive into a tutorial environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := parseProcessFlags(cmd)
			if err != nil {
				return err
			}
			cfg, l, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			req := core.NewRequest(uuid.NewString(), cfg, fs.NewOsFileSystem(), shell.NewExecRunner())
			req.Archive = flags.archive
			return runProcess(ctx, req, l, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("archive", "a", "", "Process this zip instead of the first one in the uploads directory")
	return cmd
}

func parseProcessFlags(cmd *cobra.Command) (processFlags, error) {
	archive, err := cmd.Flags().GetString("archive")
	if err != nil {
		return processFlags{}, err
	}
	return processFlags{archive: archive}, nil
}

// runProcess runs the pipeline and prints a summary. Only fatal failures
// are returned.
func runProcess(ctx context.Context, req *core.Request, l logger.Logger, out io.Writer) error {
	engine := core.NewEngine(NewCliStepPublisher(out, l), l)
	state, err := engine.Process(ctx, req)
	if state == nil {
		return err
	}

	if r, ok := state.Result(core.LocateArchive); ok && r.Outcome == core.OutcomeSkipped {
		fmt.Fprintln(out, helpStyle("Nothing to do: "+r.Reason))
		return err
	}
	if err != nil {
		return err
	}

	var failed int
	for _, r := range state.Results {
		if r.Outcome == core.OutcomeFailed {
			failed++
		}
	}
	summary := fmt.Sprintf("Tutorial %s generated", nameStyle.Render(state.TutorialName))
	if failed > 0 {
		summary += warnStyle.Render(fmt.Sprintf(" with %d failed step(s)", failed))
	}
	fmt.Fprintf(out, "%s %s\n", checkMark, summary)
	for _, pending := range state.PendingArchives {
		fmt.Fprintln(out, helpStyle("Queued for the next run: "+pending))
	}
	return nil
}
