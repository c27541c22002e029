package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"profilegen/internal/config"
	"profilegen/internal/paths"
)

const configFileDefault = config.FileName

var configInitForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the generator configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE:  runConfigInit,
	}
	cmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for invalid sources and settings",
		RunE:  runConfigValidate,
	}
}

func resolvedConfigPath() string {
	if p := strings.TrimSpace(configPath); p != "" {
		return p
	}
	return configFileDefault
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return config.Config{}, err
	}
	if lvl := strings.TrimSpace(logLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := resolvedConfigPath()
	exists, err := paths.FileExists(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if exists && !configInitForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure config dir: %w", err)
		}
	}

	cfg := config.Default()
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	results := cfg.Validate()

	out := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode validation results: %w", err)
		}
	} else {
		for _, r := range results {
			fmt.Fprintf(out, "%s: %s\n", r.Level, r.Message)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "config ok")
		}
	}
	return cfg.Err()
}
