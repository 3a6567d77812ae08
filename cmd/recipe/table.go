package main

import (
	"strconv"

	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderRecipeTables prints the title line, then ingredients and steps as
// two tables.
func renderRecipeTables(r recipe.Recipe) string {
	out := r.Title + " (serves " + strconv.Itoa(r.Servings) + ")\n"

	if len(r.Ingredients) > 0 {
		rows := make([][]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			qty := ""
			if ing.Quantity != nil {
				qty = recipe.FormatQuantity(*ing.Quantity)
			}
			rows = append(rows, []string{qty, ing.Unit, ing.Item})
		}
		out += renderTable([]string{"Qty", "Unit", "Ingredient"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}) + "\n"
	}

	rows := make([][]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		rows = append(rows, []string{strconv.Itoa(s.N), s.Text, s.TimeHint})
	}
	out += renderTable([]string{"#", "Step", "Time"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}) + "\n"
	return out
}
