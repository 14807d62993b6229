package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/avolkov/examgen/internal/core/domain"
	"github.com/avolkov/examgen/internal/core/ports"
	"github.com/avolkov/examgen/internal/observability/metrics"
)

type Router struct {
	questions ports.QuestionService
	reference ports.ReferenceIngestor
	metrics   *metrics.GenerationMetrics
	httpStats *metrics.HTTPServerMetrics
}

func NewRouter(
	questions ports.QuestionService,
	reference ports.ReferenceIngestor,
	gen *metrics.GenerationMetrics,
	httpStats *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		questions: questions,
		reference: reference,
		metrics:   gen,
		httpStats: httpStats,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/questions/generate", rt.generate)
	mux.HandleFunc("POST /v1/reference", rt.ingestReference)
	mux.HandleFunc("POST /v1/chunks/{id}/tags", rt.tagChunk)
	mux.HandleFunc("DELETE /v1/chunks/{id}", rt.deleteChunk)
	mux.HandleFunc("DELETE /v1/classes/{id}/chunks", rt.deleteClassChunks)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rt.httpStats.Middleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Mode == "" {
		req.Mode = domain.ModeNormal
	}

	switch req.Mode {
	case domain.ModeNormal:
		question, err := rt.questions.Generate(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, question)
	case domain.ModeCoverage:
		set, err := rt.questions.GenerateCoverage(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set)
	case domain.ModeMockExam:
		set, err := rt.questions.GenerateMockExam(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown mode: " + string(req.Mode)})
	}
}

func (rt *Router) ingestReference(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.reference.Ingest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) tagChunk(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var req struct {
		UserOverrides domain.Metadata `json:"user_overrides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.reference.TagChunk(r.Context(), id, req.UserOverrides); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "tagged"})
}

func (rt *Router) deleteChunk(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := rt.reference.DeleteChunk(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) deleteClassChunks(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := rt.reference.DeleteClassChunks(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidQuery), domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
