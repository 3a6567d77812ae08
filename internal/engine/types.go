package engine

// --- MCP tool inputs ---

type RecipeUploadInput struct {
	SourceType string `json:"source_type,omitempty" jsonschema:"Source kind: url or file (default: url when source_url is set, else file)"`
	SourceURL  string `json:"source_url,omitempty" jsonschema:"Video URL for url sources (YouTube watch, youtu.be, shorts, embed or live links)"`
	Filename   string `json:"filename,omitempty" jsonschema:"File name for file sources"`
	SizeBytes  int64  `json:"size_bytes,omitempty" jsonschema:"Declared size in bytes; must be positive for file sources"`
}

type RecipeJobStartInput struct {
	UploadID string `json:"upload_id" jsonschema:"Upload id returned by recipe_upload"`
}

type RecipeJobInput struct {
	JobID string `json:"job_id" jsonschema:"Job id returned by recipe_job_start"`
}

type RecipeJobEventsInput struct {
	JobID    string `json:"job_id" jsonschema:"Job id returned by recipe_job_start"`
	AfterSeq int    `json:"after_seq,omitempty" jsonschema:"Only return events with a larger sequence number (default: 0 = all)"`
	WaitSecs int    `json:"wait_seconds,omitempty" jsonschema:"Wait up to this many seconds for a new event (default: 0, max: 30)"`
}

type RecipeExtractInput struct {
	URL         string `json:"url,omitempty" jsonschema:"Video URL to extract from"`
	Title       string `json:"title,omitempty" jsonschema:"Recipe title when extracting from text"`
	Description string `json:"description,omitempty" jsonschema:"Description text (ingredient lines are read from here)"`
	Transcript  string `json:"transcript,omitempty" jsonschema:"Transcript text (steps are read from here, else from the description)"`
	Format      string `json:"format,omitempty" jsonschema:"Output format: json (default), markdown, text"`
}
