package recipe

// Synthesize converts a video's title, description and transcript into a
// Recipe. It never fails: missing inputs degrade to defaults and placeholders.
func Synthesize(title, description, transcript string) Recipe {
	return Assemble(title, ExtractIngredients(description), ExtractSteps(transcript, description))
}
