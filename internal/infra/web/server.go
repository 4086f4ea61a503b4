// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"aura-studio/internal/usecase"
)

// Server exposes the studio workflow to the web UI. All state lives in
// the usecases; handlers only translate HTTP to operations and sessions
// back to JSON.
type Server struct {
	studio usecase.StudioUseCase
	refine usecase.RefineUseCase
	log    *zerolog.Logger
}

func NewServer(studio usecase.StudioUseCase, refine usecase.RefineUseCase, log *zerolog.Logger) *Server {
	return &Server{studio: studio, refine: refine, log: log}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/resume", s.handleUploadResume)
			r.Put("/record", s.handleUpdateRecord)
			r.Post("/themes/custom", s.handleCustomTheme)
			r.Post("/chat", s.handleChat)
			r.Post("/chat/diagnostic", s.handleDiagnostic)
			r.Post("/chat/apply", s.handleApply)
			r.Post("/publish", s.handlePublish)
			r.Post("/notice/dismiss", s.handleDismissNotice)
			r.Post("/key-selected", s.handleKeySelected)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
