package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"profilegen/internal/config"
	"profilegen/internal/logx"
	"profilegen/internal/paths"
	"profilegen/internal/profile"
	"profilegen/internal/tui"
)

var (
	genVersion       string
	genName          string
	genAddress       string
	genPort          int
	genFabric        string
	genForge         string
	genAssets        string
	genWorkers       int
	genStrictNatives bool
	genNoProgress    bool
)

var newProfileService = profile.NewService

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Download a game version and write its launcher profile",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	cmd.Flags().StringVarP(&genVersion, "version", "v", "", "Game version id (required)")
	cmd.Flags().StringVarP(&genName, "name", "n", "", "Profile name (required)")
	cmd.Flags().StringVarP(&genAddress, "address", "a", profile.DefaultServerName, "Server address written to the profile")
	cmd.Flags().IntVarP(&genPort, "port", "p", profile.DefaultServerPort, "Server port written to the profile")
	cmd.Flags().StringVar(&genFabric, "fabric", "", "Install the Fabric loader at this version")
	cmd.Flags().StringVar(&genForge, "forge", "", "Install Forge at this version")
	cmd.Flags().StringVar(&genAssets, "assets", "", "Reuse an existing asset set instead of downloading one")
	cmd.Flags().IntVar(&genWorkers, "workers", 0, "Concurrent download workers (default from config)")
	cmd.Flags().BoolVar(&genStrictNatives, "strict-natives", false, "Fail when a native bundle is not a readable archive")
	cmd.Flags().BoolVar(&genNoProgress, "no-progress", false, "Disable interactive progress output")

	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("fabric", "forge")
	return cmd
}

func buildRequest() profile.Request {
	req := profile.Request{
		Name:       strings.TrimSpace(genName),
		Version:    strings.TrimSpace(genVersion),
		ServerName: strings.TrimSpace(genAddress),
		ServerPort: genPort,
		AssetsName: strings.TrimSpace(genAssets),
	}
	switch {
	case strings.TrimSpace(genFabric) != "":
		req.Loader = profile.Loader{Kind: profile.LoaderFabric, Version: strings.TrimSpace(genFabric)}
	case strings.TrimSpace(genForge) != "":
		req.Loader = profile.Loader{Kind: profile.LoaderForge, Version: strings.TrimSpace(genForge)}
	}
	return req
}

func applyGenerateOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("workers") {
		cfg.Workers = genWorkers
	}
	if cmd.Flags().Changed("strict-natives") {
		cfg.Natives.Strict = genStrictNatives
	}
	cfg.ApplyDefaults()
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	outWriter := cmd.OutOrStdout()
	errWriter := cmd.ErrOrStderr()
	mode := tui.DetectMode(outWriter, genNoProgress, outputJSON)

	var status *tui.StatusWriter
	if mode != tui.ModeJSON && tui.IsTerminal(errWriter) {
		status = tui.NewStatusWriter(errWriter)
		defer status.Stop()
		status.Update("Loading config...")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyGenerateOverrides(cmd, &cfg)
	if err := cfg.Err(); err != nil {
		return err
	}
	req := buildRequest()

	if status != nil {
		status.Update("Resolving installation root...")
	}
	layout, err := paths.Resolve(rootDir, cfg)
	if err != nil {
		return err
	}

	fileLog, closer, err := logx.NewFile(layout.LogsDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger := logx.Multi{fileLog}
	if mode == tui.ModePlain && status == nil {
		logger = append(logger, logx.New(errWriter, "profilegen", cfg.LogLevel))
	}
	logger.Debug("config loaded",
		"path", resolvedConfigPath(),
		"libraries", cfg.Sources.Libraries,
		"strict_natives", cfg.Natives.Strict,
	)
	for _, r := range cfg.Validate() {
		if r.Level == "warning" {
			logger.Warn(r.Message)
		}
	}
	logger.Info("generate started",
		"profile", req.Name,
		"version", req.Version,
		"loader", string(req.Loader.Kind),
		"root", layout.Root,
		"workers", cfg.Workers,
	)

	opts := []profile.Option{profile.WithLogger(logger)}

	var res *profile.Result
	switch mode {
	case tui.ModeTUI:
		if status != nil {
			status.Stop()
		}
		model := tui.NewPhaseModel(generateTitle(req))
		err = tui.RunWithWork(outWriter, model, func(send func(tea.Msg)) error {
			svc := newProfileService(cfg, layout, append(opts, profile.WithReporter(tui.NewPhaseReporter(send)))...)
			var genErr error
			res, genErr = svc.Generate(ctx, req)
			return genErr
		})
	default:
		if status != nil {
			opts = append(opts, profile.WithReporter(tui.NewStatusReporter(status)))
		}
		res, err = newProfileService(cfg, layout, opts...).Generate(ctx, req)
		if status != nil {
			status.Stop()
		}
	}
	if err != nil {
		logger.Error("generate failed", "err", err)
		return err
	}
	logger.Info("generate finished", "profile", res.ProfilePath, "downloads", res.Downloads)

	summary := summarize(res)
	if mode == tui.ModeJSON {
		return writeSummaryJSON(outWriter, summary)
	}
	writeSummaryTable(outWriter, summary)
	return nil
}

func generateTitle(req profile.Request) string {
	title := fmt.Sprintf("%s (%s", req.Name, req.Version)
	if req.Loader.Kind != profile.LoaderNone {
		title += fmt.Sprintf(", %s %s", req.Loader.Kind, req.Loader.Version)
	}
	return title + ")"
}

type generateSummary struct {
	Profile       string `json:"profile"`
	Version       string `json:"version"`
	MainClass     string `json:"main_class"`
	ProfilePath   string `json:"profile_path"`
	OptionalsPath string `json:"optionals_path"`
	Libraries     int    `json:"libraries"`
	Optionals     int    `json:"optionals"`
	Natives       int    `json:"natives"`
	SkippedNative int    `json:"skipped_natives"`
	Downloads     int    `json:"downloads"`
}

func summarize(res *profile.Result) generateSummary {
	return generateSummary{
		Profile:       res.Descriptor.Name,
		Version:       res.Descriptor.Version,
		MainClass:     res.Descriptor.MainClass,
		ProfilePath:   res.ProfilePath,
		OptionalsPath: res.OptionalsPath,
		Libraries:     len(res.Descriptor.Libraries),
		Optionals:     len(res.Optionals),
		Natives:       len(res.Natives.Extracted),
		SkippedNative: len(res.Natives.Skipped),
		Downloads:     res.Downloads,
	}
}

func writeSummaryJSON(w io.Writer, s generateSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

func writeSummaryTable(w io.Writer, s generateSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PROFILE\t%s\n", s.Profile)
	fmt.Fprintf(tw, "VERSION\t%s\n", s.Version)
	fmt.Fprintf(tw, "MAIN CLASS\t%s\n", s.MainClass)
	fmt.Fprintf(tw, "LIBRARIES\t%d\n", s.Libraries)
	fmt.Fprintf(tw, "OPTIONALS\t%d\n", s.Optionals)
	fmt.Fprintf(tw, "NATIVES\t%d (skipped %d)\n", s.Natives, s.SkippedNative)
	fmt.Fprintf(tw, "DOWNLOADS\t%d\n", s.Downloads)
	fmt.Fprintf(tw, "WROTE\t%s\n", s.ProfilePath)
	fmt.Fprintf(tw, "\t%s\n", s.OptionalsPath)
	_ = tw.Flush()
}
