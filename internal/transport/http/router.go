package http

import (
	"log/slog"
	"net/http"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RequestTimeout bounds a protected request. The server's write timeout must exceed it.
const RequestTimeout = 30 * time.Second

// Services bundles the use cases the HTTP edge exposes.
type Services struct {
	Quiz      *app.QuizService
	Catalog   *app.CatalogService
	Analytics *app.AnalyticsService
	Export    *app.ExportService
}

// NewRouter mounts every route. Everything except /healthz requires a bearer token.
func NewRouter(svc Services, authSvc *auth.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: svc, log: logger}
	ws := NewWSHandler(svc.Quiz, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// websocket clients cannot set headers, so the token may come as a query param
	r.With(JWTMiddleware(authSvc, true)).Get("/ws/companies/{companyID}/results", ws.ServeResults)

	r.Group(func(pr chi.Router) {
		pr.Use(JWTMiddleware(authSvc, false))
		pr.Use(middleware.Timeout(RequestTimeout))

		pr.Route("/quizzes", func(qr chi.Router) {
			qr.Post("/", h.createQuiz)
			qr.Put("/{quizID}", h.updateQuiz)
			qr.Delete("/{quizID}", h.deleteQuiz)
			qr.Post("/{quizID}/questions", h.addQuestion)
			qr.Delete("/{quizID}/questions/{questionID}", h.deleteQuestion)
			qr.Post("/{quizID}/participations", h.submitParticipation)
			qr.Get("/{quizID}/retake", h.retakeStatus)
		})

		pr.Route("/users/{userID}", func(ur chi.Router) {
			ur.Get("/overall_rating", h.overallRating)
			ur.Get("/quiz_scores_with_time", h.quizScoresWithTime)
			ur.Get("/last_quiz_participations", h.lastParticipations)
			ur.Get("/quizzes/{quizID}/export", h.exportQuizForUser)
		})

		pr.Route("/companies/{companyID}", func(cr chi.Router) {
			cr.Get("/quizzes", h.listQuizzes)
			cr.Get("/average_scores_over_time", h.companyAverageScores)
			cr.Get("/users_last_attempts", h.companyUsersLastAttempts)
			cr.Get("/users/{userID}/detailed_quiz_scores", h.userDetailedScores)
			cr.Get("/quizzes/{quizID}/export", h.exportQuizForCompany)
			cr.Get("/users/{userID}/quizzes/export", h.exportAllForUser)
			cr.Get("/users/{userID}/quizzes/{quizID}/export", h.exportCompanyUserQuiz)
		})
	})
	return r
}
