package recipe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxIngredients caps how many ingredient lines are kept.
const MaxIngredients = 50

var (
	// Section headers may carry a leading emoji or markup and, when they end
	// in a colon, a short qualifier: "Ingredients for the dough:".
	ingredientsHeaderRe  = regexp.MustCompile(`(?i)^` + headerLead + `(ingredients?|ingredientes)\b` + headerTail)
	instructionsHeaderRe = regexp.MustCompile(`(?i)^` + headerLead + `(instructions?|method|directions?|preparation|steps|instrucciones|preparaci[oó]n|elaboraci[oó]n|pasos|modo de preparaci[oó]n)\b` + headerTail)
	separatorRe          = regexp.MustCompile(`^[\s\-–—=_*~.·]+$`)
	bulletRe             = regexp.MustCompile(`^\s*(?:[-*•·▪►✓✔]|\d+[.)]\s)\s*`)

	// <number> <unit?> <item>. Numbers: 2, 1.5, 1,5, 1/2, 1 1/2, ½, 1½.
	ingredientLineRe = regexp.MustCompile(
		`^(\d+\s+\d+/\d+|\d+/\d+|\d+[.,]\d+|\d*[½⅓⅔¼¾⅛]|\d+)\s*` +
			`(?:((?i:` + unitPattern + `))\.?\s+)?` +
			`(\S.*)$`)
)

const (
	headerLead = `[\s#*_=\-:\p{So}\p{Sk}\x{FE0F}\x{200D}]*`
	headerTail = `(?:[^:]{0,40}:)?[\s*_=\-:]*$`
)

// unitPattern lists recognised unit tokens, longest alternatives first so the
// regexp prefers "tbsp" over "t" and "cups" over "cup".
var unitPattern = strings.Join([]string{
	`tablespoons?`, `teaspoons?`, `tbsps?`, `tsps?`, `tbs`, `cups?`,
	`kilograms?`, `grams?`, `kgs?`, `g`, `milliliters?`, `millilitres?`, `liters?`, `litres?`, `ml`, `l`,
	`ounces?`, `oz`, `pounds?`, `lbs?`, `pints?`, `quarts?`, `gallons?`,
	`pinch(?:es)?`, `dash(?:es)?`, `cloves?`, `cans?`, `sticks?`, `slices?`, `pieces?`, `bunch(?:es)?`, `handfuls?`,
	`cucharadas?`, `cucharaditas?`, `tazas?`, `gramos?`, `kilos?`, `litros?`, `mililitros?`, `pizcas?`, `dientes?`, `latas?`,
}, "|")

var unicodeFractions = map[rune]float64{
	'½': 0.5, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 0.25, '¾': 0.75, '⅛': 0.125,
}

// ExtractIngredients reads ingredient lines from a video description.
// Scanning starts after an Ingredients header when one exists and stops at an
// Instructions-style header.
func ExtractIngredients(description string) []Ingredient {
	lines := nonEmptyLines(description)

	start := 0
	for i, line := range lines {
		if ingredientsHeaderRe.MatchString(line) {
			start = i + 1
			break
		}
	}

	out := []Ingredient{}
	for _, line := range lines[start:] {
		if instructionsHeaderRe.MatchString(line) {
			break
		}
		if separatorRe.MatchString(line) || !hasLetter(line) {
			continue
		}
		out = append(out, ParseIngredientLine(line))
		if len(out) >= MaxIngredients {
			break
		}
	}
	return out
}

// ParseIngredientLine splits one line into quantity, unit and item.
// Lines without a leading quantity keep only the item, bullet stripped.
func ParseIngredientLine(line string) Ingredient {
	line = strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))

	m := ingredientLineRe.FindStringSubmatch(line)
	if m != nil {
		if q, ok := parseQuantity(m[1]); ok {
			return Ingredient{
				Quantity: &q,
				Unit:     strings.ToLower(m[2]),
				Item:     strings.TrimSpace(m[3]),
			}
		}
	}
	return Ingredient{Item: line}
}

// parseQuantity understands integers, decimals with . or , fractions, mixed
// numbers and unicode vulgar fractions (optionally after a whole number).
func parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if fields := strings.Fields(s); len(fields) == 2 {
		whole, ok1 := parseQuantity(fields[0])
		frac, ok2 := parseQuantity(fields[1])
		return whole + frac, ok1 && ok2
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	runes := []rune(s)
	if len(runes) > 0 {
		if frac, ok := unicodeFractions[runes[len(runes)-1]]; ok {
			whole := 0.0
			if len(runes) > 1 {
				w, err := strconv.ParseFloat(string(runes[:len(runes)-1]), 64)
				if err != nil {
					return 0, false
				}
				whole = w
			}
			return whole + frac, true
		}
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
