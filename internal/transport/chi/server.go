package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/domain"
	healthuc "github.com/kailas-cloud/clausewise/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/clausewise/internal/usecase/ingest"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// DocumentIngestor turns raw text or a fetched document into stored chunks.
type DocumentIngestor interface {
	ProcessText(ctx context.Context, text, userID, docType string) (ingestuc.Result, error)
	ProcessURL(ctx context.Context, url, userID, docType string) (ingestuc.Result, error)
}

// QueryAnswerer produces a structured answer for a user question.
type QueryAnswerer interface {
	Answer(ctx context.Context, question, userID, documentID string) (domain.Answer, error)
}

// DocumentCleaner removes all stored chunks belonging to a user.
type DocumentCleaner interface {
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// HealthChecker reports aggregated component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements the HTTP API on top of the use case services.
type Server struct {
	ingest        DocumentIngestor
	query         QueryAnswerer
	cleaner       DocumentCleaner
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest DocumentIngestor,
	query QueryAnswerer,
	cleaner DocumentCleaner,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:  ingest,
		query:   query,
		cleaner: cleaner,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoContent, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedDocument, http.StatusBadRequest, CodeUnsupportedDocument),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProviderError),
		sentinelHandler(domain.ErrGenerationRateLimited, http.StatusTooManyRequests, CodeRateLimited),
	}
	return s
}

// Routes registers all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/add_document", s.AddDocument)
	r.Post("/query", s.Query)
	r.Post("/clear_user_documents", s.ClearUserDocuments)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// AddDocument handles POST /add_document.
func (s *Server) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "user_id is required")
		return
	}

	text := req.Text
	if text == "" {
		text = req.Content
	}

	var (
		res ingestuc.Result
		err error
	)
	switch {
	case text != "":
		res, err = s.ingest.ProcessText(r.Context(), text, req.UserID, req.DocumentType)
	case req.FileURL != "":
		res, err = s.ingest.ProcessURL(r.Context(), req.FileURL, req.UserID, req.DocumentType)
	default:
		err = domain.ErrNoContent
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, addDocumentResponse{
		Status:      "success",
		DocumentID:  res.DocumentID,
		ChunksAdded: res.ChunksAdded,
		Message:     fmt.Sprintf("Successfully processed document into %d chunks", res.ChunksAdded),
	})
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "user_id is required")
		return
	}

	question := req.Question
	if question == "" {
		question = req.Query
	}
	if question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "question is required")
		return
	}

	answer, err := s.query.Answer(r.Context(), question, req.UserID, req.DocumentID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToResponse(answer))
}

// ClearUserDocuments handles POST /clear_user_documents. Clearing a user
// with no stored documents succeeds with zero deletions.
func (s *Server) ClearUserDocuments(w http.ResponseWriter, r *http.Request) {
	var req clearDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "user_id is required")
		return
	}

	deleted, err := s.cleaner.DeleteByUser(r.Context(), req.UserID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	msg := fmt.Sprintf("All documents cleared for user %s", req.UserID)
	if deleted == 0 {
		msg = fmt.Sprintf("No documents found for user %s", req.UserID)
	}

	writeJSON(w, http.StatusOK, clearDocumentsResponse{
		Status:  "success",
		Deleted: deleted,
		Message: msg,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoContent,
		domain.ErrUnsupportedDocument,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
		domain.ErrGenerationRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
