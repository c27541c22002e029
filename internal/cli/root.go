package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDir    string
	configPath string
	outputJSON bool
	logLevel   string
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "profilegen",
		Short:         "Generate launcher profiles from game version manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Installation root (default from config, then ./static)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./"+configFileDefault+")")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}
