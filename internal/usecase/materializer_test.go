// File: internal/usecase/materializer_test.go
package usecase

import (
	"strings"
	"testing"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello, World!", "hello-world"},
		{"  Goroutines & Channels  ", "goroutines-channels"},
		{"UPPER lower 123", "upper-lower-123"},
		{"---already---dashed---", "already-dashed"},
		{strings.Repeat("very long title ", 10), "very-long-title-very-long-title-very-long-title-ve"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := Slugify(strings.Repeat("x", 200)); len(got) > 50 {
		t.Errorf("slug length %d exceeds 50", len(got))
	}
}

func TestTitleTakenFromFirstLine(t *testing.T) {
	job := &model.Job{InputPrompt: "write about maps"}
	s := NewMaterializer().BuildSuggestion(job, "## Go Maps Explained\n\nBody text here.", "markdown", "en", 0)
	if s.Title != "Go Maps Explained" {
		t.Fatalf("title = %q, heading markers must be stripped", s.Title)
	}
	if s.Slug != "go-maps-explained" {
		t.Fatalf("slug = %q", s.Slug)
	}
	if s.Content != "Body text here." {
		t.Fatalf("content = %q, title line must not stay in the body", s.Content)
	}

	// a heading further down never wins over line one
	s = NewMaterializer().BuildSuggestion(job, "Plain opener\n# Later Heading\nmore", "markdown", "en", 0)
	if s.Title != "Plain opener" {
		t.Fatalf("title = %q, want the first line", s.Title)
	}
	if !strings.Contains(s.Content, "# Later Heading") {
		t.Fatalf("content = %q, later lines belong to the body", s.Content)
	}
}

func TestTitleFallsBackToPrompt(t *testing.T) {
	job := &model.Job{InputPrompt: "Summarize generics"}
	s := NewMaterializer().BuildSuggestion(job, "###\nbody only", "markdown", "en", 0)
	if s.Title != "Summarize generics" {
		t.Fatalf("title = %q, want prompt echo for a blank first line", s.Title)
	}
}

func TestTagsCarriedFromMetadata(t *testing.T) {
	m := NewMaterializer()

	// decoded JSON arrives as []any
	job := &model.Job{InputMetadata: map[string]any{"tags": []any{"go", "concurrency", 7}}}
	s := m.BuildSuggestion(job, "T\nbody", "markdown", "en", 0)
	if len(s.Tags) != 2 || s.Tags[0] != "go" || s.Tags[1] != "concurrency" {
		t.Fatalf("tags = %v", s.Tags)
	}

	s = m.BuildSuggestion(&model.Job{}, "T\nbody", "markdown", "en", 0)
	if s.Tags != nil {
		t.Fatalf("tags = %v, want none without metadata", s.Tags)
	}
}

func TestExtractURLsDedupedAndCapped(t *testing.T) {
	body := "Sources\n" +
		"See https://a.example/x and https://a.example/x again.\n" +
		"Also https://b.example, https://c.example, https://d.example, " +
		"https://e.example and https://f.example."
	job := &model.Job{}
	s := NewMaterializer().BuildSuggestion(job, body, "markdown", "en", 0)
	if len(s.SourceURLs) != 5 {
		t.Fatalf("got %d urls, want 5: %v", len(s.SourceURLs), s.SourceURLs)
	}
	if s.SourceURLs[0] != "https://a.example/x" {
		t.Fatalf("first url %q, trailing punctuation must be stripped", s.SourceURLs[0])
	}
}

func TestScoreConfidence(t *testing.T) {
	long := strings.Repeat("paragraph text ", 20)
	cases := []struct {
		name         string
		output       string
		contextCount int
		want         float64
	}{
		{"short flat body", "Title\ntiny", 0, 0.35},
		{"long single paragraph", "Title\n" + long, 0, 0.50},
		{"multi paragraph", "Title\n" + long + "\n\n" + long, 0, 0.60},
		{"multi paragraph with code", "Title\n" + long + "\n\n```go\nfmt.Println()\n```\n\n" + long, 0, 0.70},
		{"everything plus context and url", "Title\n" + long + " https://ref.example\n\n```go\nx\n```\n\n" + long, 3, 0.80},
	}
	m := NewMaterializer()
	for _, tc := range cases {
		s := m.BuildSuggestion(&model.Job{}, tc.output, "markdown", "en", tc.contextCount)
		if diff := s.Confidence - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: confidence = %v, want %v", tc.name, s.Confidence, tc.want)
		}
	}
}

func TestConfidenceClamped(t *testing.T) {
	m := NewMaterializer()
	s := m.BuildSuggestion(&model.Job{}, "x", "markdown", "en", 0)
	if s.Confidence < 0.30 || s.Confidence > 0.95 {
		t.Fatalf("confidence %v outside [0.30, 0.95]", s.Confidence)
	}
}

func TestBuildSuggestionDefaults(t *testing.T) {
	job := &model.Job{ID: "j1", UserID: "u1", Kind: model.JobKindContentCreator}
	s := NewMaterializer().BuildSuggestion(job, "# T\n\nbody", "markdown", "en", 2)
	if s.Status != model.SuggestionPending {
		t.Fatalf("status = %q", s.Status)
	}
	if s.JobID != "j1" || s.UserID != "u1" {
		t.Fatalf("ownership not carried: %+v", s)
	}
	if s.Content != "body" {
		t.Fatalf("content = %q", s.Content)
	}
	if s.ID == "" || s.Rationale == "" || s.CreatedAt.IsZero() {
		t.Fatalf("incomplete suggestion: %+v", s)
	}
}
