package recipe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSteps caps how many instruction steps are kept.
const MaxSteps = 12

// PlaceholderStep is the only step emitted when there is no text to read.
const PlaceholderStep = "Review the source video for the full instructions."

// CueWords mark a sentence as instructional.
var CueWords = []string{
	"add", "mix", "stir", "combine", "cook", "bake", "boil", "simmer", "fry", "heat",
	"season", "chop", "slice", "blend", "pour", "spread", "press", "marinate", "assemble", "serve",
}

var (
	// Cue words match at a word start so "adding" and "stirred" count while
	// "preheat" does not count as "heat".
	cueRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(CueWords, "|") + `)`)

	stepPrefixRe = regexp.MustCompile(`^\s*\d+\s*[:.]\s*`)

	timeHintRe = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?(?:\s*(?:-|–|to|a)\s*\d+(?:[.,]\d+)?)?)\s*` +
		`(seconds?|secs?|minutes?|mins?|hours?|hrs?|segundos?|minutos?|horas?)\b`)
)

// ExtractSteps picks instructional sentences from the transcript, or from the
// description when the transcript is empty.
func ExtractSteps(transcript, description string) []Step {
	source := strings.TrimSpace(transcript)
	if source == "" {
		source = strings.TrimSpace(description)
	}
	if source == "" {
		return []Step{{N: 1, Text: PlaceholderStep}}
	}

	sentences := SplitSentences(source)
	var texts []string
	for _, s := range sentences {
		if !cueRe.MatchString(s) {
			continue
		}
		text := capitalize(strings.TrimSpace(stepPrefixRe.ReplaceAllString(s, "")))
		if text == "" {
			continue
		}
		texts = append(texts, text)
		if len(texts) >= MaxSteps {
			break
		}
	}

	if len(texts) == 0 {
		if len(sentences) == 0 {
			return []Step{{N: 1, Text: PlaceholderStep}}
		}
		texts = []string{sentences[0]}
	}

	steps := make([]Step, len(texts))
	for i, text := range texts {
		steps[i] = Step{N: i + 1, Text: text, TimeHint: TimeHint(text)}
	}
	return steps
}

// SplitSentences normalises whitespace and splits after runs of . ! or ?
// that are followed by whitespace. Punctuation stays with its sentence.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}
		end := i + size
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !isTerminal(next) {
				break
			}
			end += n
		}
		if end < len(text) && text[end] == ' ' {
			if s := strings.TrimSpace(text[start:end]); s != "" {
				out = append(out, s)
			}
			start = end + 1
		}
		i = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// TimeHint returns the first duration phrase in text, e.g. "10 minutes".
func TimeHint(text string) string {
	m := timeHintRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), " ") + " " + strings.ToLower(m[2])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
