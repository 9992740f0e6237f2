package adapter

import "github.com/razavioo/notimetolie.com/internal/domain/model"

// ProgressPublisher delivers job status and progress events to every live
// connection of a user. Delivery is best-effort: a failing connection must
// never fail the publishing job.
type ProgressPublisher interface {
	PublishStatus(userID, jobID string, status model.JobStatus, data map[string]any)
	PublishProgress(userID, jobID string, percent float64, message string)
}
