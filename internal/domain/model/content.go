package model

// RelatedContent is the slim projection of a published content unit returned
// by context retrieval. Only a preview of the body is carried so prompts
// stay small.
type RelatedContent struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Slug    string   `json:"slug"`
	Preview string   `json:"content_preview"`
	Tags    []string `json:"tags,omitempty"`
	URL     string   `json:"url"`
}

// ContentNode is the full content unit the editor task loads and the approve
// flow materializes. The wider content data model lives outside this core.
type ContentNode struct {
	ID        string
	Title     string
	Slug      string
	Content   string
	BlockType string
	Language  string
	Published bool
}
