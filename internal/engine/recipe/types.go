// Package recipe turns free-form video text into a structured Recipe and
// renders it as Markdown or plain text. Everything here is pure and deterministic.
package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// Recipe is the structured result of one extraction.
type Recipe struct {
	Title       string       `json:"title"`
	Servings    int          `json:"servings"`
	Time        Time         `json:"time"`
	Ingredients []Ingredient `json:"ingredients"`
	Equipment   []string     `json:"equipment"`
	Steps       []Step       `json:"steps"`
	Notes       []string     `json:"notes"`
	Allergens   []string     `json:"allergens"`
}

type Time struct {
	Total  string `json:"total"`
	Active string `json:"active"`
}

// Ingredient is one ingredient line. Quantity and Unit are absent when the
// line could not be read as <number> <unit> <item>.
type Ingredient struct {
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Item     string   `json:"item"`
}

// Step is one instruction; N is its 1-based position in Recipe.Steps.
type Step struct {
	N        int    `json:"n"`
	Text     string `json:"text"`
	TimeHint string `json:"time_hint,omitempty"`
}

// Defaults for fields this pipeline does not infer from content.
const (
	DefaultTitle    = "Untitled Recipe"
	DefaultServings = 4
	TimeUnknown     = "N/A"
)

var errInvalid = errors.New("invalid recipe")

// Validate checks the structural invariants every published recipe must hold.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: empty title", errInvalid)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: no steps", errInvalid)
	}
	for i, s := range r.Steps {
		if s.N != i+1 {
			return fmt.Errorf("%w: step %d numbered %d", errInvalid, i+1, s.N)
		}
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("%w: step %d is empty", errInvalid, s.N)
		}
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Item) == "" {
			return fmt.Errorf("%w: ingredient %d has no item", errInvalid, i+1)
		}
	}
	return nil
}

// Assemble builds a Recipe with the fixed defaults. Nil collections become
// empty so the JSON form always carries arrays.
func Assemble(title string, ingredients []Ingredient, steps []Step) Recipe {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	if steps == nil {
		steps = []Step{}
	}
	return Recipe{
		Title:       title,
		Servings:    DefaultServings,
		Time:        Time{Total: TimeUnknown, Active: TimeUnknown},
		Ingredients: ingredients,
		Equipment:   []string{},
		Steps:       steps,
		Notes:       []string{},
		Allergens:   []string{},
	}
}

// Fallback returns a placeholder recipe whose only step carries message.
func Fallback(title, message string) Recipe {
	return Assemble(title, nil, []Step{{N: 1, Text: message}})
}
