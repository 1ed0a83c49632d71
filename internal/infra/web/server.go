package web

import (
	"net/http"
	"time"

	"parallel-muhit-webapp/internal/infra/web/view"
	"parallel-muhit-webapp/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Options struct {
	MaxUploadBytes int64
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type Server struct {
	uc      *usecase.PageController
	views   *view.Renderer
	cookies *SessionCookies
	opts    Options
	log     *zerolog.Logger
}

func NewServer(
	uc *usecase.PageController,
	views *view.Renderer,
	cookies *SessionCookies,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{uc: uc, views: views, cookies: cookies, opts: opts, log: logger}
}

// Router builds the chi router. Every state change is a POST answered with
// 303 to GET /app, so reloading never repeats an action.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(s.opts.RequestTimeout),
	)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handleRoot)
	r.Route("/app", func(r chi.Router) {
		r.Get("/", s.handleApp)
		r.Post("/history", s.handleOpenHistory)
		r.Post("/history/{page}", s.handleHistoryPage)
		r.Post("/faq", s.handleFAQ)
		r.Post("/back", s.handleBack)
		r.Post("/renewal/accept", s.handleAcceptRenewal)
		r.Post("/renewal/decline", s.handleDeclineRenewal)
		r.Post("/upload/file", s.handleChooseFile)
		r.Post("/upload/submit", s.handleSubmit)
		r.Post("/upload/cancel", s.handleCancel)
	})
	return r
}
