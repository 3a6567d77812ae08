package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/anatolykoptev/go_recipe/internal/toolutil"
)

// outputFormat is toolutil.NormFormat plus the CLI-only "table" view.
func outputFormat(name string) string {
	if strings.EqualFold(strings.TrimSpace(name), "table") {
		return "table"
	}
	return toolutil.NormFormat(name)
}

func writeResult(w io.Writer, res jobs.JobResult, format string) error {
	switch format {
	case "markdown":
		_, err := io.WriteString(w, res.Markdown)
		return err
	case "text":
		_, err := io.WriteString(w, res.Text)
		return err
	case "table":
		_, err := io.WriteString(w, renderRecipeTables(res.Recipe))
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Recipe); err != nil {
			return fmt.Errorf("encode recipe: %w", err)
		}
		return nil
	}
}
