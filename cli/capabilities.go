package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/santiagomed/devtut/config"
	"github.com/santiagomed/devtut/logger"
	"github.com/santiagomed/devtut/vonage"
	"github.com/spf13/cobra"
)

func newCapabilitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Enable capabilities on the configured Vonage application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := cmd.Flags().GetStringSlice("capability")
			if err != nil {
				return err
			}
			cfg, l, err := setup(cmd)
			if err != nil {
				return err
			}
			runCapabilities(cmd.Context(), cfg, l, names, cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringSlice("capability", nil, "Capability to enable (repeatable, e.g. voice)")
	return cmd
}

// runCapabilities toggles the requested capabilities. Failures are reported
// and never stop the caller.
func runCapabilities(ctx context.Context, cfg *config.Config, l logger.Logger, names []string, out io.Writer) bool {
	if len(names) == 0 {
		fmt.Fprintln(out, helpStyle("No capabilities, skipping."))
		return true
	}
	if err := cfg.ValidateVonage(); err != nil {
		l.Error(err.Error())
		fmt.Fprintf(out, "%s %v\n", crossMark, err)
		return false
	}

	fmt.Fprintf(out, "Enabling %s\n", strings.Join(names, ", "))
	client := vonage.NewClient(cfg.Vonage.APIURL, cfg.Vonage.APIKey, cfg.Vonage.APISecret)
	kept, err := client.ToggleCapabilities(ctx, cfg.Vonage.ApplicationID, names)
	if err != nil {
		l.Error(fmt.Sprintf("Failed to update the application: %v", err))
		fmt.Fprintf(out, "%s Failed to update the application.\n", crossMark)
		return false
	}
	if len(kept) < len(names) {
		l.Debug(fmt.Sprintf("Unrecognized capabilities dropped, kept: %v", kept))
	}
	fmt.Fprintf(out, "%s Successfully updated the application.\n", checkMark)
	return true
}
