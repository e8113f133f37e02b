package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/medibot/internal/core/ports/driving"
	"github.com/custodia-labs/medibot/internal/logger"
)

// maxRequestBody bounds the size of an ask request.
const maxRequestBody = 64 << 10

// IndexCounter reports the number of indexed chunks.
type IndexCounter interface {
	Count() int
}

// Config wires the server to the application.
type Config struct {
	// Ask answers questions. Required.
	Ask driving.AskService

	// Index is reported by /health. Optional.
	Index IndexCounter

	// EmbeddingModel and LLMModel are reported by /health.
	EmbeddingModel string
	LLMModel       string

	// Timeout bounds one ask request. Zero means no limit.
	Timeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	cfg Config
	mux *http.ServeMux
}

// NewServer creates a server from cfg.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Ask == nil {
		return nil, ErrMissingAskService
	}
	s := &Server{cfg: cfg, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s, nil
}

// Handler returns the request handler with per-request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("Listening on http://%s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type askRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status         string `json:"status"`
	IndexedChunks  int    `json:"indexed_chunks"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	LLMModel       string `json:"llm_model,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgBadRequest})
		return
	}

	ctx := r.Context()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	answer, err := s.cfg.Ask.Ask(ctx, req.Question)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Ask timed out after %s", s.cfg.Timeout)
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: msgTimeout})
	case err != nil:
		logger.Error("Ask failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: msgUpstreamFailure})
	default:
		writeJSON(w, http.StatusOK, answer)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:         "ok",
		EmbeddingModel: s.cfg.EmbeddingModel,
		LLMModel:       s.cfg.LLMModel,
	}
	if s.cfg.Index != nil {
		resp.IndexedChunks = s.cfg.Index.Count()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexPage)) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Writing response: %v", err)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
