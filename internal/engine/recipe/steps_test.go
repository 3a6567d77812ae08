package recipe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepTexts(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Text
	}
	return out
}

func TestExtractSteps_CueFilter(t *testing.T) {
	got := ExtractSteps("Preheat the oven. Add flour and stir gently. Serve warm.", "")
	assert.Equal(t, []string{"Add flour and stir gently.", "Serve warm."}, stepTexts(got))
	for i, s := range got {
		assert.Equal(t, i+1, s.N)
	}
}

func TestExtractSteps_EmptyInputs(t *testing.T) {
	got := ExtractSteps("", "  ")
	require.Len(t, got, 1)
	assert.Equal(t, Step{N: 1, Text: PlaceholderStep}, got[0])
}

func TestExtractSteps_FallsBackToDescription(t *testing.T) {
	got := ExtractSteps("", "Whisk the eggs. Then bake for 20 minutes!")
	require.Len(t, got, 1)
	assert.Equal(t, "Then bake for 20 minutes!", got[0].Text)
	assert.Equal(t, "20 minutes", got[0].TimeHint)
}

func TestExtractSteps_NoCueUsesFirstSentence(t *testing.T) {
	got := ExtractSteps("hello everyone and welcome back. today is a great day.", "")
	require.Len(t, got, 1)
	assert.Equal(t, "hello everyone and welcome back.", got[0].Text)
}

func TestExtractSteps_PrefixAndCapitalisation(t *testing.T) {
	got := ExtractSteps("3: chop the onions finely. 4:slice the tomatoes?", "")
	assert.Equal(t, []string{"Chop the onions finely.", "Slice the tomatoes?"}, stepTexts(got))
}

func TestExtractSteps_Cap(t *testing.T) {
	var sb strings.Builder
	for i := range 30 {
		fmt.Fprintf(&sb, "Stir batch %d. ", i)
	}
	got := ExtractSteps(sb.String(), "")
	require.Len(t, got, MaxSteps)
	assert.Equal(t, "Stir batch 0.", got[0].Text)
	assert.Equal(t, MaxSteps, got[MaxSteps-1].N)
}

func TestExtractSteps_SubsequenceOfSentences(t *testing.T) {
	transcript := "So today we cook. Mixing is key! Is it? Now pour the sauce... Enjoy"
	sentences := SplitSentences(transcript)
	got := ExtractSteps(transcript, "")

	j := 0
	for _, s := range got {
		for j < len(sentences) && !strings.EqualFold(sentences[j], s.Text) {
			j++
		}
		require.Less(t, j, len(sentences), "step %q is not a sentence in order", s.Text)
		assert.Regexp(t, cueRe, s.Text)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"Wait... what?! ok", []string{"Wait...", "what?!", "ok"}},
		{"  spaced\n\nout .  text ", []string{"spaced out .", "text"}},
		{"3.5 cups then stop.", []string{"3.5 cups then stop."}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestTimeHint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bake for 25 minutes.", "25 minutes"},
		{"Simmer 1-2 hours until tender.", "1-2 hours"},
		{"Hervir 10 a 15 minutos.", "10 a 15 minutos"},
		{"Rest 30 SECS", "30 secs"},
		{"Serve warm.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeHint(tt.in))
		})
	}
}
