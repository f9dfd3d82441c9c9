package cli

import (
	"fmt"
	"os"

	"github.com/santiagomed/devtut/config"
	"github.com/santiagomed/devtut/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "devtut",
	Short: "devtut turns uploaded tutorial archives into Codespaces environments",
	Long: `devtut extracts an uploaded tutorial archive, builds its documentation site and
generates the devcontainer and README that launch it in GitHub Codespaces.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

type rootFlags struct {
	config string
	debug  bool
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newCapabilitiesCmd())
	rootCmd.AddCommand(newFetchToolbarCmd())
}

func parseRootFlags(cmd *cobra.Command) (rootFlags, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return rootFlags{}, err
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return rootFlags{}, err
	}
	return rootFlags{config: cfgPath, debug: debug}, nil
}

// setup loads the configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	flags, err := parseRootFlags(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadConfig(flags.config)
	if err != nil {
		return nil, nil, err
	}
	if flags.debug {
		cfg.Debug = true
	}

	opts := logger.Options{Console: cmd.ErrOrStderr(), Debug: cfg.Debug}
	if cfg.LogDir != "" {
		opts.LogDir = cfg.Path(cfg.LogDir)
	}
	l, err := logger.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
