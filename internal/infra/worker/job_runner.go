// File: internal/infra/worker/job_runner.go
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
	"github.com/razavioo/notimetolie.com/internal/infra/logging"
	"github.com/razavioo/notimetolie.com/internal/infra/metrics"
	"github.com/razavioo/notimetolie.com/internal/usecase"
)

// ProviderFactory builds the adapter an agent configuration describes, given
// the already-decrypted credential.
type ProviderFactory func(ctx context.Context, cfg *model.AgentConfiguration, apiKey string) (adapter.AIProvider, error)

// Decrypter is the read side of the secret vault.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Runner executes jobs end to end: guard the pending->running edge, gather
// context, call the provider, materialize suggestions and write the terminal
// state. All terminal writes are conditional so a concurrent cancel wins.
type Runner struct {
	jobs        repository.JobRepository
	configs     repository.ConfigurationRepository
	contents    repository.ContentRepository
	suggestions repository.SuggestionRepository
	tm          repository.TransactionManager

	vault    Decrypter
	factory  ProviderFactory
	progress adapter.ProgressPublisher
	mat      *usecase.Materializer

	pool           *Pool
	jobTimeout     time.Duration
	requestTimeout time.Duration
	log            *zerolog.Logger
}

func NewRunner(
	jobs repository.JobRepository,
	configs repository.ConfigurationRepository,
	contents repository.ContentRepository,
	suggestions repository.SuggestionRepository,
	tm repository.TransactionManager,
	vault Decrypter,
	factory ProviderFactory,
	progress adapter.ProgressPublisher,
	pool *Pool,
	jobTimeout, requestTimeout time.Duration,
	log *zerolog.Logger,
) *Runner {
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	if requestTimeout <= 0 {
		requestTimeout = time.Minute
	}
	return &Runner{
		jobs:           jobs,
		configs:        configs,
		contents:       contents,
		suggestions:    suggestions,
		tm:             tm,
		vault:          vault,
		factory:        factory,
		progress:       progress,
		mat:            usecase.NewMaterializer(),
		pool:           pool,
		jobTimeout:     jobTimeout,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// Dispatch hands a pending job to the pool. A full queue is not an error for
// the caller: the job stays pending and the sweeper retries it.
func (r *Runner) Dispatch(jobID string) error {
	err := r.pool.Submit(func(ctx context.Context) error {
		r.Run(ctx, jobID)
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("job_id", jobID).Msg("dispatch deferred to sweeper")
	}
	return nil
}

// Run executes one job. Safe to call for an id that was cancelled or already
// picked up; the MarkRunning guard makes the duplicate a no-op.
func (r *Runner) Run(ctx context.Context, jobID string) {
	ctx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	job, err := r.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		r.log.Error().Err(err).Str("job_id", jobID).Msg("job load failed")
		return
	}

	ctx = logging.WithJobID(logging.WithUserID(ctx, job.UserID), job.ID)
	log := logging.With(ctx, r.log)

	now := time.Now()
	ok, err := r.jobs.MarkRunning(ctx, nil, jobID, now)
	if err != nil {
		log.Error().Err(err).Msg("mark running failed")
		return
	}
	if !ok {
		log.Debug().Msg("job no longer pending, skipping")
		return
	}
	job.Status = model.JobStatusRunning
	job.StartedAt = &now

	r.progress.PublishStatus(job.UserID, job.ID, model.JobStatusRunning, nil)
	r.progress.PublishProgress(job.UserID, job.ID, 10, "Validating configuration")

	done := logging.TraceDuration(log, "Runner.execute")
	suggestion, execErr := r.execute(ctx, job)
	done()
	r.finish(job, suggestion, execErr, now)
}

// execute performs the fallible middle of the job and mutates job's output
// fields in place. It never writes job state.
func (r *Runner) execute(ctx context.Context, job *model.Job) (*model.Suggestion, error) {
	tpl, err := templateFor(job.Kind)
	if err != nil {
		return nil, err
	}

	cfg, err := r.configs.FindByID(ctx, nil, job.ConfigurationID)
	if err != nil {
		return nil, fmt.Errorf("configuration load: %w", err)
	}

	apiKey, err := r.vault.Decrypt(cfg.APIKeyEncrypted)
	if err != nil {
		return nil, domain.ErrNoUsableCredential
	}

	r.progress.PublishProgress(job.UserID, job.ID, 30, "Gathering related content")

	var (
		items  []model.RelatedContent
		target *model.ContentNode
	)
	if job.Kind == model.JobKindContentEditor {
		blockID, err := editTargetID(job)
		if err != nil {
			return nil, err
		}
		target, err = r.contents.FindByID(ctx, nil, blockID)
		if err != nil {
			return nil, fmt.Errorf("edit target %s: %w", blockID, err)
		}
	} else if tpl.contextLimit > 0 {
		items, err = r.contents.FindRelated(ctx, contextQuery(job.InputPrompt), tpl.contextLimit)
		if err != nil {
			// retrieval is enrichment, never fatal
			r.log.Warn().Err(err).Str("job_id", job.ID).Msg("context retrieval failed")
			items = nil
		}
	}
	for _, it := range items {
		job.RelatedContentIDs = append(job.RelatedContentIDs, it.ID)
	}

	systemPrompt := tpl.systemPrompt
	if cfg.SystemPrompt != "" {
		systemPrompt = cfg.SystemPrompt
	}
	temperature := cfg.Temperature
	if job.Kind == model.JobKindContentEditor {
		temperature = model.DefaultEditTemperature
	}

	provider, err := r.factory(ctx, cfg, apiKey)
	if err != nil {
		return nil, err
	}

	r.progress.PublishProgress(job.UserID, job.ID, 50, "Calling model provider")

	genCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	callStart := time.Now()
	res, err := provider.Generate(genCtx, adapter.GenerationRequest{
		Prompt:       buildUserPrompt(job, items, target),
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		MaxTokens:    cfg.MaxTokens,
	})
	latencyMs := int(time.Since(callStart).Milliseconds())
	metrics.ObserveGeneration(cfg.Provider, cfg.ModelName,
		res.Usage.PromptTokens, res.Usage.CompletionTokens, latencyMs, err == nil)
	if err != nil {
		return nil, err
	}
	if res.Content == "" {
		return nil, domain.ErrEmptyCompletion
	}

	r.progress.PublishProgress(job.UserID, job.ID, 80, "Processing response")

	job.Usage = model.TokenUsage{
		Prompt:     res.Usage.PromptTokens,
		Completion: res.Usage.CompletionTokens,
		Total:      res.Usage.TotalTokens,
	}
	job.OutputData = map[string]any{
		"content":       res.Content,
		"finish_reason": res.FinishReason,
		"provider":      cfg.Provider,
		"model":         cfg.ModelName,
	}

	return r.materialize(job, cfg, tpl, target, res.Content, len(items)), nil
}

// materialize builds the review suggestion for the creator and editor paths,
// when the configuration grants the matching capability. Researcher and
// designer jobs store their output and referenced ids only, never a
// suggestion. Jobs without the capability still complete with raw output.
func (r *Runner) materialize(job *model.Job, cfg *model.AgentConfiguration, tpl taskTemplate, target *model.ContentNode, body string, contextCount int) *model.Suggestion {
	switch job.Kind {
	case model.JobKindContentEditor:
		if !cfg.CanEditBlocks {
			return nil
		}
		s := r.mat.BuildSuggestion(job, body, target.BlockType, target.Language, contextCount)
		// an edit proposal keeps the identity of the block it revises
		s.Title = target.Title
		s.Slug = target.Slug
		return s
	case model.JobKindContentCreator:
		if !cfg.CanCreateBlocks {
			return nil
		}
		return r.mat.BuildSuggestion(job, body, tpl.blockType, language(job), contextCount)
	default:
		return nil
	}
}

// finish applies the terminal state. The write is guarded on the row still
// being running: if a cancel won the race, the result (and any suggestion)
// is discarded wholesale.
func (r *Runner) finish(job *model.Job, suggestion *model.Suggestion, execErr error, startedAt time.Time) {
	// job may outlive the request/pool context that spawned it
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	completedAt := time.Now()
	job.CompletedAt = &completedAt
	job.ExecutionTimeMS = completedAt.Sub(startedAt).Milliseconds()

	if execErr != nil {
		job.Status = model.JobStatusFailed
		if pe, ok := domain.AsProviderError(execErr); ok {
			job.ErrorMessage = pe.Message
		} else {
			job.ErrorMessage = execErr.Error()
		}
	} else {
		job.Status = model.JobStatusCompleted
	}

	applied := false
	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := r.jobs.FinishIfRunning(ctx, tx, job)
		if err != nil {
			return err
		}
		applied = ok
		if !ok || suggestion == nil {
			return nil
		}
		if err := r.suggestions.Save(ctx, tx, suggestion); err != nil {
			return err
		}
		metrics.IncSuggestion("created")
		return nil
	})
	if err != nil {
		r.log.Error().Err(err).Str("job_id", job.ID).Msg("terminal write failed")
		return
	}
	if !applied {
		r.log.Info().Str("job_id", job.ID).Msg("result discarded, job was cancelled mid-flight")
		return
	}

	metrics.IncJob(string(job.Kind), string(job.Status))
	metrics.ObserveJobDuration(string(job.Kind), job.ExecutionTimeMS)

	data := map[string]any{"execution_time_ms": job.ExecutionTimeMS}
	if job.Status == model.JobStatusCompleted {
		data["tokens_used"] = job.Usage
		if suggestion != nil {
			data["suggestion_id"] = suggestion.ID
		}
	} else {
		data["error"] = job.ErrorMessage
	}
	r.progress.PublishStatus(job.UserID, job.ID, job.Status, data)

	r.log.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("status", string(job.Status)).
		Int64("execution_time_ms", job.ExecutionTimeMS).
		Msg("job finished")
}

// contextQuery trims the brief down to something a title match can digest.
func contextQuery(prompt string) string {
	const max = 80
	if len(prompt) > max {
		return prompt[:max]
	}
	return prompt
}

func language(job *model.Job) string {
	if lang, ok := job.InputMetadata["language"].(string); ok && lang != "" {
		return lang
	}
	return "en"
}
