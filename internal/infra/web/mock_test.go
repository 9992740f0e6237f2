// File: internal/infra/web/mock_test.go
package web

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

type stubJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newStubJobRepo() *stubJobRepo { return &stubJobRepo{jobs: map[string]*model.Job{}} }

func (r *stubJobRepo) Save(_ context.Context, _ repository.Tx, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = ulid.Make().String()
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *stubJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *stubJobRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, _ int) ([]*model.Job, error) {
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

func (r *stubJobRepo) MarkRunning(_ context.Context, _ repository.Tx, id string, at time.Time) (bool, error) {
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

func (r *stubJobRepo) FinishIfRunning(_ context.Context, _ repository.Tx, job *model.Job) (bool, error) {
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

func (r *stubJobRepo) Cancel(_ context.Context, _ repository.Tx, id, reason string, at time.Time) (bool, error) {
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

func (r *stubJobRepo) Touch(context.Context, repository.Tx, string) error { return nil }

func (r *stubJobRepo) ReclaimPending(context.Context, time.Duration) (*model.Job, error) {
	return nil, domain.ErrNotFound
}

type stubConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*model.AgentConfiguration
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{configs: map[string]*model.AgentConfiguration{}}
}

func (r *stubConfigRepo) Save(_ context.Context, _ repository.Tx, cfg *model.AgentConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.ID == "" {
		cfg.ID = "cfg-" + ulid.Make().String()
	}
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r *stubConfigRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.AgentConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubConfigRepo) ListByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.AgentConfiguration, error) {
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

func (r *stubConfigRepo) Update(_ context.Context, _ repository.Tx, cfg *model.AgentConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r *stubConfigRepo) Deactivate(_ context.Context, _ repository.Tx, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok || c.UserID != userID || !c.Active {
		return false, nil
	}
	c.Active = false
	return true, nil
}

type stubSuggestionRepo struct {
	mu          sync.Mutex
	suggestions map[string]*model.Suggestion
}

func newStubSuggestionRepo() *stubSuggestionRepo {
	return &stubSuggestionRepo{suggestions: map[string]*model.Suggestion{}}
}

func (r *stubSuggestionRepo) Save(_ context.Context, _ repository.Tx, s *model.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.suggestions[s.ID] = &cp
	return nil
}

func (r *stubSuggestionRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSuggestionRepo) ListByJob(context.Context, repository.Tx, string) ([]*model.Suggestion, error) {
	return nil, nil
}

func (r *stubSuggestionRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, status model.SuggestionStatus, _ int) ([]*model.Suggestion, error) {
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

func (r *stubSuggestionRepo) Approve(_ context.Context, _ repository.Tx, id, reviewerID, createdBlockID string, at time.Time) (bool, error) {
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

func (r *stubSuggestionRepo) Reject(_ context.Context, _ repository.Tx, id, reviewerID, feedback string, at time.Time) (bool, error) {
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

type stubContentRepo struct{}

func (stubContentRepo) FindRelated(context.Context, string, int) ([]model.RelatedContent, error) {
	return nil, nil
}

func (stubContentRepo) FindByID(context.Context, repository.Tx, string) (*model.ContentNode, error) {
	return nil, domain.ErrNotFound
}

func (stubContentRepo) CreateFromSuggestion(_ context.Context, _ repository.Tx, s *model.Suggestion) (string, error) {
	return "block-" + s.ID, nil
}

type stubTM struct{}

func (stubTM) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(context.Context, repository.Tx) error) error {
	return fn(ctx, nil)
}

type stubQuota struct{ deny bool }

func (q stubQuota) Allow(context.Context, string, int) error {
	if q.deny {
		return domain.ErrQuotaExceeded
	}
	return nil
}

type stubDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *stubDispatcher) Dispatch(jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, jobID)
	return nil
}

type stubProgress struct{}

func (stubProgress) PublishStatus(string, string, model.JobStatus, map[string]any) {}
func (stubProgress) PublishProgress(string, string, float64, string)              {}

type stubVault struct{}

func (stubVault) Encrypt(pt string) (string, error) { return "enc:" + pt, nil }
func (stubVault) Decrypt(ct string) (string, error) { return ct, nil }

type stubCatalog struct{}

func (stubCatalog) Known(id string) bool         { return id != "hal9000" }
func (stubCatalog) NeedsEndpoint(id string) bool { return id == "azure" }
