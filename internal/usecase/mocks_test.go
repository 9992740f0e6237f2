// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newMemJobRepo() *memJobRepo { return &memJobRepo{jobs: map[string]*model.Job{}} }

func (r *memJobRepo) Save(_ context.Context, _ repository.Tx, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = ulid.Make().String()
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, _ int) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, j := range r.jobs {
		if j.UserID == userID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memJobRepo) MarkRunning(_ context.Context, _ repository.Tx, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || !model.CanTransition(j.Status, model.JobStatusRunning) {
		return false, nil
	}
	j.Status = model.JobStatusRunning
	j.StartedAt = &at
	return true, nil
}

func (r *memJobRepo) FinishIfRunning(_ context.Context, _ repository.Tx, job *model.Job) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok || !model.CanTransition(stored.Status, job.Status) {
		return false, nil
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return true, nil
}

func (r *memJobRepo) Cancel(_ context.Context, _ repository.Tx, id, reason string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || !model.CanTransition(j.Status, model.JobStatusCancelled) {
		return false, nil
	}
	j.Status = model.JobStatusCancelled
	j.ErrorMessage = reason
	j.CompletedAt = &at
	return true, nil
}

func (r *memJobRepo) Touch(context.Context, repository.Tx, string) error { return nil }

func (r *memJobRepo) ReclaimPending(context.Context, time.Duration) (*model.Job, error) {
	return nil, domain.ErrNotFound
}

type memConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*model.AgentConfiguration
}

func newMemConfigRepo() *memConfigRepo {
	return &memConfigRepo{configs: map[string]*model.AgentConfiguration{}}
}

func (r *memConfigRepo) Save(_ context.Context, _ repository.Tx, cfg *model.AgentConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.ID == "" {
		cfg.ID = "cfg-" + ulid.Make().String()
	}
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r *memConfigRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.AgentConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memConfigRepo) ListByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.AgentConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AgentConfiguration
	for _, c := range r.configs {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memConfigRepo) Update(_ context.Context, _ repository.Tx, cfg *model.AgentConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r *memConfigRepo) Deactivate(_ context.Context, _ repository.Tx, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok || c.UserID != userID || !c.Active {
		return false, nil
	}
	c.Active = false
	return true, nil
}

type memSuggestionRepo struct {
	mu          sync.Mutex
	suggestions map[string]*model.Suggestion
}

func newMemSuggestionRepo() *memSuggestionRepo {
	return &memSuggestionRepo{suggestions: map[string]*model.Suggestion{}}
}

func (r *memSuggestionRepo) Save(_ context.Context, _ repository.Tx, s *model.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.suggestions[s.ID] = &cp
	return nil
}

func (r *memSuggestionRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSuggestionRepo) ListByJob(_ context.Context, _ repository.Tx, jobID string) ([]*model.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Suggestion
	for _, s := range r.suggestions {
		if s.JobID == jobID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSuggestionRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, status model.SuggestionStatus, _ int) ([]*model.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Suggestion
	for _, s := range r.suggestions {
		if s.UserID == userID && (status == "" || s.Status == status) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSuggestionRepo) Approve(_ context.Context, _ repository.Tx, id, reviewerID, createdBlockID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok || s.Status != model.SuggestionPending {
		return false, nil
	}
	s.Status = model.SuggestionApproved
	s.ReviewedBy = reviewerID
	s.CreatedBlockID = createdBlockID
	s.ApprovedAt = &at
	return true, nil
}

func (r *memSuggestionRepo) Reject(_ context.Context, _ repository.Tx, id, reviewerID, feedback string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok || s.Status != model.SuggestionPending {
		return false, nil
	}
	s.Status = model.SuggestionRejected
	s.ReviewedBy = reviewerID
	s.Feedback = feedback
	s.RejectedAt = &at
	return true, nil
}

type memContentRepo struct {
	mu       sync.Mutex
	created  []*model.Suggestion
	nodes    map[string]*model.ContentNode
	failNext bool
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{nodes: map[string]*model.ContentNode{}}
}

func (r *memContentRepo) FindRelated(context.Context, string, int) ([]model.RelatedContent, error) {
	return nil, nil
}

func (r *memContentRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ContentNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (r *memContentRepo) CreateFromSuggestion(_ context.Context, _ repository.Tx, s *model.Suggestion) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return "", domain.ErrOperationFailed
	}
	r.created = append(r.created, s)
	return "block-" + s.ID, nil
}

// memTM runs fn directly; approval rollback semantics are asserted through
// the guarded repo return values, not real transactions.
type memTM struct{}

func (memTM) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(context.Context, repository.Tx) error) error {
	return fn(ctx, nil)
}

type memQuota struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemQuota() *memQuota { return &memQuota{counts: map[string]int{}} }

func (q *memQuota) Allow(_ context.Context, configID string, limit int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit <= 0 {
		return nil
	}
	q.counts[configID]++
	if q.counts[configID] > limit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

type memDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *memDispatcher) Dispatch(jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, jobID)
	return nil
}

type memProgress struct {
	mu       sync.Mutex
	statuses []model.JobStatus
}

func (p *memProgress) PublishStatus(_, _ string, status model.JobStatus, _ map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, status)
}

func (p *memProgress) PublishProgress(string, string, float64, string) {}

type plainVault struct{}

func (plainVault) Encrypt(pt string) (string, error) { return "enc:" + pt, nil }
func (plainVault) Decrypt(ct string) (string, error) { return ct[4:], nil }

type staticCatalog struct{}

func (staticCatalog) Known(id string) bool {
	switch id {
	case "openai", "groq", "anthropic", "gemini", "azure", "custom":
		return true
	}
	return false
}

func (staticCatalog) NeedsEndpoint(id string) bool { return id == "azure" || id == "custom" }
