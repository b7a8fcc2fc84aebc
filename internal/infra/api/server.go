package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/config"
	"ai-chat-assistant/internal/usecase"
)

const (
	ServiceName    = "AI Chat Assistant"
	ServiceVersion = "1.0.0"

	// multipart framing allowance on top of the file size limit
	multipartOverhead = 1 << 20
)

// Server exposes the job, chat and context use cases over HTTP.
type Server struct {
	jobs    usecase.JobUseCase
	context usecase.ContextUseCase
	cfg     config.HTTPConfig
	maxBody int64
	log     *zerolog.Logger
	now     func() time.Time
}

func NewServer(jobs usecase.JobUseCase, ctxUC usecase.ContextUseCase, cfg config.HTTPConfig, maxUpload int64, logger *zerolog.Logger) *Server {
	s := &Server{
		jobs:    jobs,
		context: ctxUC,
		cfg:     cfg,
		log:     logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	if maxUpload > 0 {
		s.maxBody = maxUpload + multipartOverhead
	}
	return s
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{traceHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		Timeout(s.cfg.RequestTimeout),
	)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/messages", func(r chi.Router) {
		r.Post("/", s.handleCreateMessage)
		r.Get("/", s.handleListJobs)
		r.Get("/{jobID}", s.handleGetJob)
		r.Delete("/{jobID}", s.handleDeleteJob)
	})
	r.Post("/files", s.handleUploadFile)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/history", s.handleHistory)
		r.Delete("/clear", s.handleClear)
	})
	r.Route("/context", func(r chi.Router) {
		r.Get("/analytics", s.handleAnalytics)
		r.Post("/optimize", s.handleOptimize)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// NewHTTPServer wraps the router in an http.Server with the configured address.
func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
