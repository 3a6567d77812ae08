package recipe

import (
	"strconv"
	"strings"
)

// ToMarkdown renders r as a Markdown document.
func ToMarkdown(r Recipe) string {
	var sb strings.Builder
	sb.WriteString("# " + r.Title + "\n\n")
	sb.WriteString("**Servings:** " + strconv.Itoa(r.Servings) + "\n\n")

	sb.WriteString("## Ingredients\n\n")
	for _, ing := range r.Ingredients {
		sb.WriteString("- " + IngredientLine(ing) + "\n")
	}

	sb.WriteString("\n## Instructions\n\n")
	for _, s := range r.Steps {
		sb.WriteString(strconv.Itoa(s.N) + ". " + s.Text + "\n")
	}
	return sb.String()
}

// ToPlainText renders r as plain text.
func ToPlainText(r Recipe) string {
	var sb strings.Builder
	sb.WriteString(r.Title + "\n")
	sb.WriteString("Servings: " + strconv.Itoa(r.Servings) + "\n\n")

	sb.WriteString("Ingredients\n")
	for _, ing := range r.Ingredients {
		sb.WriteString("- " + IngredientLine(ing) + "\n")
	}

	sb.WriteString("\nInstructions\n")
	for _, s := range r.Steps {
		sb.WriteString(strconv.Itoa(s.N) + ". " + s.Text + "\n")
	}
	return sb.String()
}

// IngredientLine formats "quantity unit item", leaving out absent fields.
func IngredientLine(ing Ingredient) string {
	parts := make([]string, 0, 3)
	if ing.Quantity != nil {
		parts = append(parts, FormatQuantity(*ing.Quantity))
	}
	if ing.Unit != "" {
		parts = append(parts, ing.Unit)
	}
	if ing.Item != "" {
		parts = append(parts, ing.Item)
	}
	return strings.Join(parts, " ")
}

// FormatQuantity prints q with at most three decimals and no trailing zeros.
func FormatQuantity(q float64) string {
	s := strconv.FormatFloat(q, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
