// File: internal/infra/worker/templates.go
package worker

import (
	"fmt"
	"strings"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

// taskTemplate fixes the persona and retrieval budget of one job kind.
// Larger tasks get more retrieved context because their output spans more
// ground; the editor gets none and works from the target block instead.
type taskTemplate struct {
	systemPrompt string
	contextLimit int
	blockType    string
}

var templates = map[model.JobKind]taskTemplate{
	model.JobKindContentCreator: {
		systemPrompt: "You are a content creator for a learning platform. " +
			"Write a complete, self-contained content block in markdown for the given brief. " +
			"Start with a single heading. Ground yourself in the related content provided, " +
			"and do not repeat material it already covers.",
		contextLimit: 5,
		blockType:    "markdown",
	},
	model.JobKindContentResearcher: {
		systemPrompt: "You are a research assistant for a learning platform. " +
			"Survey the topic in the brief, compare it against the related content provided, " +
			"and produce a structured markdown summary of findings with source links where you have them.",
		contextLimit: 10,
		blockType:    "markdown",
	},
	model.JobKindContentEditor: {
		systemPrompt: "You are an editor for a learning platform. " +
			"Revise the block below according to the instructions. Preserve the author's voice " +
			"and the block's format; return only the full revised block.",
		contextLimit: 0,
		blockType:    "markdown",
	},
	model.JobKindCourseDesigner: {
		systemPrompt: "You are a curriculum designer for a learning platform. " +
			"Design a course outline for the given brief as markdown: one top-level heading, " +
			"then one second-level heading per lesson with a short description and learning goals. " +
			"Reuse the related existing content where it fits instead of proposing duplicates.",
		contextLimit: 20,
		blockType:    "markdown",
	},
}

func templateFor(kind model.JobKind) (taskTemplate, error) {
	t, ok := templates[kind]
	if !ok {
		return taskTemplate{}, domain.ErrUnknownJobKind
	}
	return t, nil
}

// buildUserPrompt assembles the final user message: the brief, then the
// retrieved context, then (for editor jobs) the target block.
func buildUserPrompt(job *model.Job, items []model.RelatedContent, target *model.ContentNode) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(job.InputPrompt))

	if len(items) > 0 {
		b.WriteString("\n\n## Related existing content\n")
		for _, it := range items {
			fmt.Fprintf(&b, "\n### %s\n%s\n", it.Title, it.Preview)
		}
	}

	if target != nil {
		fmt.Fprintf(&b, "\n\n## Block to revise: %s\n\n%s\n", target.Title, target.Content)
	}
	return b.String()
}

// editTargetID extracts the block reference an editor job must carry.
func editTargetID(job *model.Job) (string, error) {
	raw, ok := job.InputMetadata["block_id"]
	if !ok {
		return "", domain.ErrMissingEditTarget
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", domain.ErrMissingEditTarget
	}
	return id, nil
}
