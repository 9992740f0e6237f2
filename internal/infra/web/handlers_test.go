// File: internal/infra/web/handlers_test.go
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/infra/ws"
	"github.com/razavioo/notimetolie.com/internal/usecase"
)

const testSecret = "test-jwt-secret"

type webHarness struct {
	jobs        *stubJobRepo
	configs     *stubConfigRepo
	suggestions *stubSuggestionRepo
	dispatcher  *stubDispatcher
	server      *httptest.Server
}

func newWebHarness(t *testing.T) *webHarness {
	t.Helper()
	log := zerolog.Nop()

	h := &webHarness{
		jobs:        newStubJobRepo(),
		configs:     newStubConfigRepo(),
		suggestions: newStubSuggestionRepo(),
		dispatcher:  &stubDispatcher{},
	}

	jobUC := usecase.NewJobUseCase(h.jobs, h.configs, stubQuota{}, h.dispatcher, stubProgress{}, &log)
	configUC := usecase.NewConfigUseCase(h.configs, stubVault{}, stubCatalog{}, "gpt-4o-mini", &log)
	suggestionUC := usecase.NewSuggestionUseCase(h.suggestions, stubContentRepo{}, stubTM{}, &log)

	auth := NewAuth(testSecret)
	hub := ws.NewHub(&log)
	wsHandler := ws.NewHandler(hub, auth.VerifyToken, &log)

	srv := NewServer(jobUC, configUC, suggestionUC, wsHandler, auth, &log)
	h.server = httptest.NewServer(srv.Router())
	t.Cleanup(h.server.Close)
	return h
}

func token(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func (h *webHarness) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func (h *webHarness) seedConfig(t *testing.T, userID string) *model.AgentConfiguration {
	t.Helper()
	cfg := &model.AgentConfiguration{
		UserID:          userID,
		Name:            "seed",
		Provider:        "groq",
		ModelName:       "llama-3.3-70b-versatile",
		APIKeyEncrypted: "enc:key",
		Active:          true,
	}
	if err := h.configs.Save(context.Background(), nil, cfg); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRoutesRequireAuth(t *testing.T) {
	h := newWebHarness(t)
	for _, path := range []string{"/api/v1/ai/configurations", "/api/v1/ai/jobs", "/api/v1/ai/suggestions"} {
		resp := h.do(t, http.MethodGet, path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", path, resp.StatusCode)
		}
	}
	resp := h.do(t, http.MethodGet, "/api/v1/ai/jobs", "not-a-jwt", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", resp.StatusCode)
	}
}

func TestHealthAndWSStatsAreOpen(t *testing.T) {
	h := newWebHarness(t)
	for _, path := range []string{"/healthz", "/ws/stats", "/metrics"} {
		resp := h.do(t, http.MethodGet, path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestCreateConfigMasksCredential(t *testing.T) {
	h := newWebHarness(t)
	resp := h.do(t, http.MethodPost, "/api/v1/ai/configurations", token(t, "u1"), map[string]any{
		"name":       "writer",
		"provider":   "groq",
		"model_name": "llama-3.3-70b-versatile",
		"api_key":    "gsk-secret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if _, leaked := body["api_key"]; leaked {
		t.Fatal("api_key must not be echoed")
	}
	if _, leaked := body["api_key_encrypted"]; leaked {
		t.Fatal("ciphertext must not be echoed")
	}
	if body["has_api_key"] != true {
		t.Fatalf("has_api_key = %v", body["has_api_key"])
	}
	if body["temperature"] != model.DefaultTemperature {
		t.Fatalf("temperature = %v, want default", body["temperature"])
	}
}

func TestCreateConfigValidationErrors(t *testing.T) {
	h := newWebHarness(t)
	resp := h.do(t, http.MethodPost, "/api/v1/ai/configurations", token(t, "u1"), map[string]any{
		"name":       "x",
		"provider":   "hal9000",
		"model_name": "m",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown provider: status %d, want 400", resp.StatusCode)
	}
}

func TestSubmitJobFlow(t *testing.T) {
	h := newWebHarness(t)
	cfg := h.seedConfig(t, "u1")

	resp := h.do(t, http.MethodPost, "/api/v1/ai/jobs", token(t, "u1"), map[string]any{
		"configuration_id": cfg.ID,
		"kind":             "content_creator",
		"prompt":           "Write about select statements",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status %d, want 202", resp.StatusCode)
	}
	job := decode[jobResponse](t, resp)
	if job.Status != "pending" || job.ID == "" {
		t.Fatalf("job = %+v", job)
	}
	if len(h.dispatcher.ids) != 1 {
		t.Fatal("job not dispatched")
	}

	get := h.do(t, http.MethodGet, "/api/v1/ai/jobs/"+job.ID, token(t, "u1"), nil)
	if get.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", get.StatusCode)
	}
	got := decode[jobResponse](t, get)
	if got.ID != job.ID {
		t.Fatalf("got %+v", got)
	}

	// another user's job reads as absent
	foreign := h.do(t, http.MethodGet, "/api/v1/ai/jobs/"+job.ID, token(t, "u2"), nil)
	foreign.Body.Close()
	if foreign.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get: status %d, want 404", foreign.StatusCode)
	}
}

func TestSubmitJobForeignConfigReadsAsAbsent(t *testing.T) {
	h := newWebHarness(t)
	cfg := h.seedConfig(t, "u1")

	resp := h.do(t, http.MethodPost, "/api/v1/ai/jobs", token(t, "u2"), map[string]any{
		"configuration_id": cfg.ID,
		"kind":             "content_creator",
		"prompt":           "p",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("submit on foreign config: status %d, want 404", resp.StatusCode)
	}
}

func TestSubmitJobBadKind(t *testing.T) {
	h := newWebHarness(t)
	cfg := h.seedConfig(t, "u1")

	resp := h.do(t, http.MethodPost, "/api/v1/ai/jobs", token(t, "u1"), map[string]any{
		"configuration_id": cfg.ID,
		"kind":             "fortune_teller",
		"prompt":           "p",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestCancelJob(t *testing.T) {
	h := newWebHarness(t)
	cfg := h.seedConfig(t, "u1")

	resp := h.do(t, http.MethodPost, "/api/v1/ai/jobs", token(t, "u1"), map[string]any{
		"configuration_id": cfg.ID,
		"kind":             "content_creator",
		"prompt":           "p",
	})
	job := decode[jobResponse](t, resp)

	cancel := h.do(t, http.MethodPost, "/api/v1/ai/jobs/"+job.ID+"/cancel", token(t, "u1"), nil)
	cancel.Body.Close()
	if cancel.StatusCode != http.StatusOK {
		t.Fatalf("cancel status %d", cancel.StatusCode)
	}

	again := h.do(t, http.MethodPost, "/api/v1/ai/jobs/"+job.ID+"/cancel", token(t, "u1"), nil)
	again.Body.Close()
	if again.StatusCode != http.StatusBadRequest {
		t.Fatalf("cancel of terminal job: status %d, want 400", again.StatusCode)
	}
}

func TestSuggestionReviewFlow(t *testing.T) {
	h := newWebHarness(t)
	_ = h.suggestions.Save(context.Background(), nil, &model.Suggestion{
		ID:     "s1",
		JobID:  "j1",
		UserID: "u1",
		Title:  "T",
		Slug:   "t",
		Status: model.SuggestionPending,
	})

	list := h.do(t, http.MethodGet, "/api/v1/ai/suggestions?status=pending", token(t, "u1"), nil)
	listBody := decode[map[string][]suggestionResponse](t, list)
	if len(listBody["data"]) != 1 {
		t.Fatalf("list = %+v", listBody)
	}

	approve := h.do(t, http.MethodPost, "/api/v1/ai/suggestions/s1/approve", token(t, "u1"), nil)
	if approve.StatusCode != http.StatusOK {
		t.Fatalf("approve status %d", approve.StatusCode)
	}
	body := decode[map[string]string](t, approve)
	if body["created_block_id"] != "block-s1" {
		t.Fatalf("approve body %v", body)
	}

	reject := h.do(t, http.MethodPost, "/api/v1/ai/suggestions/s1/reject", token(t, "u1"),
		map[string]string{"feedback": "late"})
	reject.Body.Close()
	if reject.StatusCode != http.StatusBadRequest {
		t.Fatalf("reject after approve: status %d, want 400", reject.StatusCode)
	}
}

func TestDeleteConfigIsSoft(t *testing.T) {
	h := newWebHarness(t)
	cfg := h.seedConfig(t, "u1")

	del := h.do(t, http.MethodDelete, "/api/v1/ai/configurations/"+cfg.ID, token(t, "u1"), nil)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", del.StatusCode)
	}

	// still listed, flagged inactive
	list := h.do(t, http.MethodGet, "/api/v1/ai/configurations", token(t, "u1"), nil)
	body := decode[map[string][]configResponse](t, list)
	if len(body["data"]) != 1 || body["data"][0].Active {
		t.Fatalf("list = %+v", body)
	}

	// submitting against it is refused
	resp := h.do(t, http.MethodPost, "/api/v1/ai/jobs", token(t, "u1"), map[string]any{
		"configuration_id": cfg.ID,
		"kind":             "content_creator",
		"prompt":           "p",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("submit on inactive: status %d, want 409", resp.StatusCode)
	}
}
