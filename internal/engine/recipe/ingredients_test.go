package recipe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(f float64) *float64 { return &f }

func TestExtractIngredients_BetweenHeaders(t *testing.T) {
	got := ExtractIngredients("Ingredients\n2 cups flour\n1 tsp salt\nInstructions\nMix.")
	want := []Ingredient{
		{Quantity: qty(2), Unit: "cups", Item: "flour"},
		{Quantity: qty(1), Unit: "tsp", Item: "salt"},
	}
	assert.Equal(t, want, got)
}

func TestExtractIngredients_QualifiedHeaders(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{"qualifier", "Watch till the end!\nIngredients for the dough:\n2 Cups flour\n1 tsp salt\nInstructions for the dough:\nMix."},
		{"emoji", "Watch till the end!\n🥕 Ingredients\n2 Cups flour\n1 tsp salt\n👩‍🍳 Steps\nMix."},
		{"serves", "Watch till the end!\n**Ingredients (serves 4):**\n2 Cups flour\n1 tsp salt\nMethod:\nMix."},
	}
	want := []Ingredient{
		{Quantity: qty(2), Unit: "cups", Item: "flour"},
		{Quantity: qty(1), Unit: "tsp", Item: "salt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, ExtractIngredients(tt.desc))
		})
	}
}

func TestExtractIngredients_HeaderNeedsColonForQualifier(t *testing.T) {
	got := ExtractIngredients("Ingredients 2 cups flour\n1 egg")
	require.Len(t, got, 2)
	assert.Equal(t, Ingredient{Item: "Ingredients 2 cups flour"}, got[0])
}

func TestExtractIngredients_NoHeaderScansEverything(t *testing.T) {
	got := ExtractIngredients("My favourite bread\n500 g flour\n- water")
	require.Len(t, got, 3)
	assert.Equal(t, Ingredient{Item: "My favourite bread"}, got[0])
	assert.Equal(t, Ingredient{Quantity: qty(500), Unit: "g", Item: "flour"}, got[1])
	assert.Equal(t, Ingredient{Item: "water"}, got[2])
}

func TestExtractIngredients_SkipsNoise(t *testing.T) {
	desc := strings.Join([]string{
		"Subscribe for more!",
		"INGREDIENTES:",
		"----------",
		"2 tazas de harina",
		"12345",
		"* una pizca de sal",
		"",
		"Preparación",
		"Mezclar todo.",
	}, "\n")
	got := ExtractIngredients(desc)
	assert.Equal(t, []Ingredient{
		{Quantity: qty(2), Unit: "tazas", Item: "de harina"},
		{Item: "una pizca de sal"},
	}, got)
}

func TestExtractIngredients_Cap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Ingredients\n")
	for i := range 80 {
		fmt.Fprintf(&sb, "%d g item%d\n", i+1, i)
	}
	got := ExtractIngredients(sb.String())
	require.Len(t, got, MaxIngredients)
	assert.Equal(t, "item0", got[0].Item)
	assert.Equal(t, "item49", got[49].Item)
}

func TestExtractIngredients_Empty(t *testing.T) {
	got := ExtractIngredients("")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		line string
		want Ingredient
	}{
		{"2 cups flour", Ingredient{Quantity: qty(2), Unit: "cups", Item: "flour"}},
		{"1/2 tsp baking soda", Ingredient{Quantity: qty(0.5), Unit: "tsp", Item: "baking soda"}},
		{"1 1/2 cups milk", Ingredient{Quantity: qty(1.5), Unit: "cups", Item: "milk"}},
		{"1,5 kg potatoes", Ingredient{Quantity: qty(1.5), Unit: "kg", Item: "potatoes"}},
		{"½ cup sugar", Ingredient{Quantity: qty(0.5), Unit: "cup", Item: "sugar"}},
		{"200g butter", Ingredient{Quantity: qty(200), Unit: "g", Item: "butter"}},
		{"3 Tbsp. olive oil", Ingredient{Quantity: qty(3), Unit: "tbsp", Item: "olive oil"}},
		{"2 Cups flour", Ingredient{Quantity: qty(2), Unit: "cups", Item: "flour"}},
		{"1 Tbsp oil", Ingredient{Quantity: qty(1), Unit: "tbsp", Item: "oil"}},
		{"500 G sugar", Ingredient{Quantity: qty(500), Unit: "g", Item: "sugar"}},
		{"2 Large eggs", Ingredient{Quantity: qty(2), Item: "Large eggs"}},
		{"2 eggs", Ingredient{Quantity: qty(2), Item: "eggs"}},
		{"1 lemon", Ingredient{Quantity: qty(1), Item: "lemon"}},
		{"- salt to taste", Ingredient{Item: "salt to taste"}},
		{"• fresh basil", Ingredient{Item: "fresh basil"}},
		{"* 4 cloves garlic", Ingredient{Quantity: qty(4), Unit: "cloves", Item: "garlic"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseIngredientLine(tt.line)
			assert.Equal(t, tt.want.Unit, got.Unit)
			assert.Equal(t, tt.want.Item, got.Item)
			if tt.want.Quantity == nil {
				assert.Nil(t, got.Quantity)
				return
			}
			require.NotNil(t, got.Quantity)
			assert.InDelta(t, *tt.want.Quantity, *got.Quantity, 1e-9)
		})
	}
}
