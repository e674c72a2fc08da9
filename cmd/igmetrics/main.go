package main

import (
	"context"
	"fmt"
	"igmetrics/internal/di"
	"igmetrics/internal/extraction"
	"igmetrics/internal/models"
	"igmetrics/internal/reconcile"
	"igmetrics/internal/report"
	"igmetrics/internal/structures"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yml"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:           "igmetrics",
		Short:         "Profile metrics extraction and reconciliation daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", defaultConfigPath, "path to the YAML config")
	root.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "log to console")

	root.AddCommand(newServeCommand(flags), newParseCommand())
	return root
}

func newServeCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := di.InitApp(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Run()
		},
	}
}

type parseOutput struct {
	Profile *models.ProfileMetrics `json:"profile"`
	Source  models.Source          `json:"source,omitempty"`
	Report  string                 `json:"report,omitempty"`
}

func newParseCommand() *cobra.Command {
	var (
		username   string
		withReport bool
	)
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Extract metrics from recognized screenshot text (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			out, err := parseText(cmd.Context(), username, string(text), withReport)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "profile", "username to attach the metrics to")
	cmd.Flags().BoolVarP(&withReport, "report", "r", false, "compose the Russian report")
	return cmd
}

func parseText(ctx context.Context, username, text string, withReport bool) (*parseOutput, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	username, err := models.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	res, err := extraction.Chain{extraction.TextExtractor{}}.Run(ctx, extraction.Input{Username: username, OCRText: text})
	if err != nil && res == nil {
		return nil, err
	}
	merged, err := reconcile.Reconcile(nil, res, nil, username, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	out := &parseOutput{Profile: merged.Profile, Source: res.Source}
	if withReport {
		out.Report = report.Compose(report.NewInput(merged.Profile))
	}
	return out, nil
}
