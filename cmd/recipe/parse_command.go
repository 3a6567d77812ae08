package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	var title, descriptionPath, transcriptPath, format string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Build a recipe from a description and/or transcript you already have",
		Long: "Ingredients are read from the description, steps from the transcript (or the description\n" +
			"when no transcript is given). Use - to read a file from stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if descriptionPath == "" && transcriptPath == "" {
				return errors.New("at least one of --description or --transcript is required")
			}
			if descriptionPath == "-" && transcriptPath == "-" {
				return errors.New("only one input can be read from stdin")
			}
			description, err := readInput(cmd.InOrStdin(), descriptionPath)
			if err != nil {
				return fmt.Errorf("read description: %w", err)
			}
			transcript, err := readInput(cmd.InOrStdin(), transcriptPath)
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			res := jobs.FromText(title, description, transcript)
			return writeResult(cmd.OutOrStdout(), res, outputFormat(format))
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Recipe title")
	cmd.Flags().StringVarP(&descriptionPath, "description", "d", "", "Description file (- for stdin)")
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "s", "", "Transcript file (- for stdin)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: json, markdown, text or table")
	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		return string(data), err
	default:
		data, err := os.ReadFile(path)
		return string(data), err
	}
}
