// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/usecase"
)

// --- wire DTOs ---

type configRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Provider    string `json:"provider"`
	ModelName   string `json:"model_name"`
	APIEndpoint string `json:"api_endpoint"`
	APIKey      string `json:"api_key"`

	Temperature  *float64 `json:"temperature"`
	MaxTokens    *int     `json:"max_tokens"`
	SystemPrompt string   `json:"system_prompt"`

	CanCreateBlocks   bool `json:"can_create_blocks"`
	CanEditBlocks     bool `json:"can_edit_blocks"`
	CanSearchWeb      bool `json:"can_search_web"`
	DailyRequestLimit *int `json:"daily_request_limit"`
}

func (r configRequest) toInput() usecase.ConfigInput {
	return usecase.ConfigInput{
		Name:              r.Name,
		Description:       r.Description,
		Provider:          r.Provider,
		ModelName:         r.ModelName,
		APIEndpoint:       r.APIEndpoint,
		APIKey:            r.APIKey,
		Temperature:       r.Temperature,
		MaxTokens:         r.MaxTokens,
		SystemPrompt:      r.SystemPrompt,
		CanCreateBlocks:   r.CanCreateBlocks,
		CanEditBlocks:     r.CanEditBlocks,
		CanSearchWeb:      r.CanSearchWeb,
		DailyRequestLimit: r.DailyRequestLimit,
	}
}

type configResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Provider    string `json:"provider"`
	ModelName   string `json:"model_name"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
	HasAPIKey   bool   `json:"has_api_key"`

	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt,omitempty"`

	CanCreateBlocks   bool `json:"can_create_blocks"`
	CanEditBlocks     bool `json:"can_edit_blocks"`
	CanSearchWeb      bool `json:"can_search_web"`
	DailyRequestLimit int  `json:"daily_request_limit"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// configJSON never carries credential material, not even ciphertext.
func configJSON(c *model.AgentConfiguration) configResponse {
	return configResponse{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Provider:          c.Provider,
		ModelName:         c.ModelName,
		APIEndpoint:       c.APIEndpoint,
		HasAPIKey:         c.APIKeyEncrypted != "",
		Temperature:       c.Temperature,
		MaxTokens:         c.MaxTokens,
		SystemPrompt:      c.SystemPrompt,
		CanCreateBlocks:   c.CanCreateBlocks,
		CanEditBlocks:     c.CanEditBlocks,
		CanSearchWeb:      c.CanSearchWeb,
		DailyRequestLimit: c.DailyRequestLimit,
		Active:            c.Active,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

type jobSubmitRequest struct {
	ConfigurationID string         `json:"configuration_id"`
	Kind            string         `json:"kind"`
	Prompt          string         `json:"prompt"`
	Metadata        map[string]any `json:"metadata"`
}

type jobResponse struct {
	ID              string `json:"id"`
	ConfigurationID string `json:"configuration_id"`
	Kind            string `json:"kind"`
	Status          string `json:"status"`

	InputPrompt   string         `json:"input_prompt"`
	InputMetadata map[string]any `json:"input_metadata,omitempty"`

	OutputData        map[string]any   `json:"output_data,omitempty"`
	RelatedContentIDs []string         `json:"related_content_ids,omitempty"`
	Usage             model.TokenUsage `json:"tokens_used"`
	ExecutionTimeMS   int64            `json:"execution_time_ms"`
	ErrorMessage      string           `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func jobJSON(j *model.Job) jobResponse {
	return jobResponse{
		ID:                j.ID,
		ConfigurationID:   j.ConfigurationID,
		Kind:              string(j.Kind),
		Status:            string(j.Status),
		InputPrompt:       j.InputPrompt,
		InputMetadata:     j.InputMetadata,
		OutputData:        j.OutputData,
		RelatedContentIDs: j.RelatedContentIDs,
		Usage:             j.Usage,
		ExecutionTimeMS:   j.ExecutionTimeMS,
		ErrorMessage:      j.ErrorMessage,
		CreatedAt:         j.CreatedAt,
		StartedAt:         j.StartedAt,
		CompletedAt:       j.CompletedAt,
	}
}

type suggestionResponse struct {
	ID    string `json:"id"`
	JobID string `json:"job_id"`

	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Content   string   `json:"content"`
	BlockType string   `json:"block_type"`
	Language  string   `json:"language,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	SourceURLs []string `json:"source_urls,omitempty"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale,omitempty"`

	Status         string     `json:"status"`
	Feedback       string     `json:"feedback,omitempty"`
	CreatedBlockID string     `json:"created_block_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
}

func suggestionJSON(s *model.Suggestion) suggestionResponse {
	return suggestionResponse{
		ID:             s.ID,
		JobID:          s.JobID,
		Title:          s.Title,
		Slug:           s.Slug,
		Content:        s.Content,
		BlockType:      s.BlockType,
		Language:       s.Language,
		Tags:           s.Tags,
		SourceURLs:     s.SourceURLs,
		Confidence:     s.Confidence,
		Rationale:      s.Rationale,
		Status:         string(s.Status),
		Feedback:       s.Feedback,
		CreatedBlockID: s.CreatedBlockID,
		CreatedAt:      s.CreatedAt,
		ApprovedAt:     s.ApprovedAt,
		RejectedAt:     s.RejectedAt,
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	// a foreign row reads as absent, its existence is not disclosed
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNotOwner):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownJobKind),
		errors.Is(err, domain.ErrMissingEditTarget),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrEndpointRequired),
		errors.Is(err, domain.ErrJobTerminal),
		errors.Is(err, domain.ErrSuggestionActioned):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrConfigInactive):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- configuration handlers ---

func (s *Server) createConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	cfg, err := s.configUC.Create(r.Context(), UserID(r.Context()), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, configJSON(cfg))
}

func (s *Server) listConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.configUC.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]configResponse, 0, len(configs))
	for _, c := range configs {
		out = append(out, configJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configUC.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configJSON(cfg))
}

func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	cfg, err := s.configUC.Update(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configJSON(cfg))
}

func (s *Server) deleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.configUC.Deactivate(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- job handlers ---

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req jobSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	job, err := s.jobUC.Submit(r.Context(), UserID(r.Context()),
		req.ConfigurationID, model.JobKind(req.Kind), req.Prompt, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobJSON(job))
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := s.jobUC.List(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobJSON(j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobUC.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobJSON(job))
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) // body is optional

	if err := s.jobUC.Cancel(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.JobStatusCancelled)})
}

// --- suggestion handlers ---

func (s *Server) listSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := model.SuggestionStatus(r.URL.Query().Get("status"))

	suggestions, err := s.suggestionUC.List(r.Context(), UserID(r.Context()), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]suggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, suggestionJSON(sg))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) getSuggestion(w http.ResponseWriter, r *http.Request) {
	sg, err := s.suggestionUC.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionJSON(sg))
}

func (s *Server) approveSuggestion(w http.ResponseWriter, r *http.Request) {
	blockID, err := s.suggestionUC.Approve(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":           string(model.SuggestionApproved),
		"created_block_id": blockID,
	})
}

func (s *Server) rejectSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Feedback string `json:"feedback"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := s.suggestionUC.Reject(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.Feedback); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.SuggestionRejected)})
}
