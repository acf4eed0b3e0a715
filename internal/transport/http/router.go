package http

import (
	"net/http"
	"time"

	"exam-grading-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Services bundles the use cases served over HTTP.
type Services struct {
	Papers      *app.PaperService
	AnswerKeys  *app.AnswerKeyService
	Submissions *app.SubmissionService
	Results     *app.ResultsService
}

// Handler serves the grading API.
type Handler struct {
	papers      *app.PaperService
	answerKeys  *app.AnswerKeyService
	submissions *app.SubmissionService
	results     *app.ResultsService
	log         *zap.Logger
	maxUpload   int64
	live        *LiveResultsHandler
}

func NewHandler(svc Services, log *zap.Logger, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Handler{
		papers:      svc.Papers,
		answerKeys:  svc.AnswerKeys,
		submissions: svc.Submissions,
		results:     svc.Results,
		log:         log,
		maxUpload:   maxUpload,
		live:        NewLiveResultsHandler(svc.Results, log),
	}
}

// NewRouter wires routes, authentication and request logging. Cross-origin
// requests are only answered for allowedOrigins.
func NewRouter(h *Handler, verifier TokenVerifier, readiness func(*http.Request) error, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if readiness != nil {
			if err := readiness(r); err != nil {
				h.log.Warn("health check failed", zap.Error(err))
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(verifier, h.log))

		// The websocket stream outlives any request timeout.
		r.With(requireAdmin(h.log)).Get("/papers/{paperID}/results/live", h.live.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/papers", h.listPapers)
			r.Get("/papers/{paperID}", h.getPaper)
			r.Get("/papers/{paperID}/pdf", h.downloadPDF)
			r.Post("/papers/{paperID}/submissions", h.recordSubmission)
			r.Get("/submissions/{submissionID}", h.getSubmission)
			r.Get("/students/me/results", h.myResults)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin(h.log))
				r.Post("/papers", h.createPaper)
				r.Put("/papers/{paperID}", h.updatePaper)
				r.Delete("/papers/{paperID}", h.deletePaper)
				r.Put("/papers/{paperID}/pdf", h.uploadPDF)
				r.Put("/papers/{paperID}/answer-key", h.replaceAnswerKey)
				r.Get("/papers/{paperID}/answer-key", h.getAnswerKey)
				r.Get("/papers/{paperID}/results", h.paperResults)
				r.Get("/students/{studentID}/results", h.studentResults)
			})
		})
	})
	return r
}
