package loam

// NoteMetadata is the optional front matter of a markdown note.
type NoteMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`
	// Format is the pandoc reader for the note body, e.g. "gfm".
	Format string `json:"format" mapstructure:"format"`
	// Skip excludes the note from batch conversion.
	Skip bool `json:"skip" mapstructure:"skip"`
}
