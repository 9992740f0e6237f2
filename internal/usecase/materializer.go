// File: internal/usecase/materializer.go
package usecase

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

const (
	slugMaxLen     = 50
	maxSourceURLs  = 5
	minConfidence  = 0.30
	maxConfidence  = 0.95
	baseConfidence = 0.50
	shortBodyChars = 200
)

var (
	urlRe       = regexp.MustCompile(`https?://[^\s)\]>"']+`)
	fencedRe    = regexp.MustCompile("(?s)```.+?```")
	nonSlugRe   = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRe = regexp.MustCompile(`-{2,}`)
)

// Materializer turns raw model output into reviewable suggestions. It is pure
// transformation; persistence stays with the caller.
type Materializer struct{}

func NewMaterializer() *Materializer { return &Materializer{} }

// BuildSuggestion derives a pending suggestion from one generated output: the
// first line becomes the title (heading markers stripped), the remainder the
// body. contextCount is how many retrieved content items fed the prompt.
func (m *Materializer) BuildSuggestion(job *model.Job, output, blockType, language string, contextCount int) *model.Suggestion {
	title, body := splitTitle(output)
	if title == "" {
		title = truncate(strings.TrimSpace(job.InputPrompt), 120)
	}
	urls := extractURLs(body)

	return &model.Suggestion{
		ID:         uuid.NewString(),
		JobID:      job.ID,
		UserID:     job.UserID,
		Title:      title,
		Slug:       Slugify(title),
		Content:    body,
		BlockType:  blockType,
		Language:   language,
		Tags:       tagsFrom(job.InputMetadata),
		SourceURLs: urls,
		Confidence: scoreConfidence(body, contextCount, len(urls)),
		Rationale:  rationaleFor(job.Kind),
		Status:     model.SuggestionPending,
		CreatedAt:  time.Now(),
	}
}

// splitTitle takes line one as the title, stripping leading markdown heading
// markers, and returns the rest of the output as the body.
func splitTitle(output string) (string, string) {
	line, rest, _ := strings.Cut(strings.TrimSpace(output), "\n")
	title := strings.TrimSpace(strings.TrimLeft(line, "# "))
	return truncate(title, 120), strings.TrimSpace(rest)
}

func tagsFrom(meta map[string]any) []string {
	switch v := meta["tags"].(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, raw := range v {
			if tag, ok := raw.(string); ok && tag != "" {
				out = append(out, tag)
			}
		}
		return out
	}
	return nil
}

// Slugify lowercases, replaces runs of non-alphanumerics with single hyphens,
// and trims the result to 50 characters without a dangling hyphen.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = multiDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > slugMaxLen {
		s = strings.Trim(s[:slugMaxLen], "-")
	}
	return s
}

func extractURLs(body string) []string {
	raw := urlRe.FindAllString(body, -1)
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, u := range raw {
		u = strings.TrimRight(u, ".,;")
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) == maxSourceURLs {
			break
		}
	}
	return out
}

// scoreConfidence is a cheap structural heuristic, not a model judgment.
// Longer, structured bodies grounded in retrieved context score higher.
func scoreConfidence(body string, contextCount, urlCount int) float64 {
	score := baseConfidence
	if strings.Count(body, "\n\n") >= 1 {
		score += 0.10
	}
	if fencedRe.MatchString(body) {
		score += 0.10
	}
	if contextCount > 0 {
		score += 0.05
	}
	if urlCount > 0 {
		score += 0.05
	}
	if len(body) < shortBodyChars {
		score -= 0.15
	}
	if score < minConfidence {
		score = minConfidence
	}
	if score > maxConfidence {
		score = maxConfidence
	}
	return score
}

func rationaleFor(kind model.JobKind) string {
	switch kind {
	case model.JobKindContentCreator:
		return "Drafted from the submitted brief."
	case model.JobKindContentEditor:
		return "Proposed revision of an existing block."
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
