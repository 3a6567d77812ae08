package main

import (
	"context"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/anatolykoptev/go_recipe/internal/engine/sources"
	"github.com/anatolykoptev/go_recipe/internal/toolutil"
	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	var format string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch a video page and print the extracted recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine.Init(engine.Config{
				FetchTimeout: env.Duration("FETCH_TIMEOUT", 10*time.Second),
				FetchRPS:     env.Float("FETCH_RPS", 0),
				TimedTextURL: env.Str("TIMEDTEXT_URL", engine.DefaultTimedTextURL),
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := jobs.Extract(ctx, sources.Extractor{}, toolutil.NormURL(args[0]))
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res, outputFormat(format))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: json, markdown, text or table")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	return cmd
}
