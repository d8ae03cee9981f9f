// Package api provides the HTTP server and handlers for the book
// recommendation service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
	"github.com/largefullmoon/backend-book-recommendation/internal/notify"
	"github.com/largefullmoon/backend-book-recommendation/internal/ratelimit"
	"github.com/largefullmoon/backend-book-recommendation/internal/recommend"
	"github.com/largefullmoon/backend-book-recommendation/internal/service"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       *store.Store
	books       *service.BookService
	ageGroups   *service.AgeGroupService
	quiz        *service.QuizService
	accounts    *service.AccountService
	planner     *recommend.Service
	email       *notify.EmailClient
	whatsapp    *notify.WhatsAppClient
	planLimiter *ratelimit.KeyedLimiter
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *store.Store,
	books *service.BookService,
	ageGroups *service.AgeGroupService,
	quiz *service.QuizService,
	accounts *service.AccountService,
	planner *recommend.Service,
	email *notify.EmailClient,
	whatsapp *notify.WhatsAppClient,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:     store,
		books:     books,
		ageGroups: ageGroups,
		quiz:      quiz,
		accounts:  accounts,
		planner:   planner,
		email:     email,
		whatsapp:  whatsapp,
		// Plan generation burns an OpenAI call per request; 5 per minute per
		// client is plenty for an interactive quiz.
		planLimiter: ratelimit.New(5.0/60.0, 5),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The quiz front-end is served from a different origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	// Catalog administration.
	s.router.Route("/books", func(r chi.Router) {
		r.Get("/", s.handleListBooks)
		r.Post("/", s.handleCreateBook)
		r.Get("/search", s.handleSearchBooks)
		r.Put("/{id}", s.handleUpdateBook)
		r.Delete("/{id}", s.handleDeleteBook)
	})
	s.router.Post("/import-books", s.handleImportBooks)

	// Age-group recommendation snapshots.
	s.router.Route("/recommendations", func(r chi.Router) {
		r.Get("/", s.handleGetAllRecommendations)
		r.Get("/{ageGroup}", s.handleGetAgeGroupRecommendations)
		r.Put("/{ageGroup}", s.handleUpdateAgeGroupRecommendations)
	})

	// Standalone parent consent.
	s.router.Post("/parent-consent", s.handleStandaloneConsent)

	// Parent account administration.
	s.router.Post("/user-profile", s.handleCreateUserProfile)
	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Put("/", s.handleUpdateUser)
			r.Delete("/", s.handleDeleteUser)
			r.Post("/recommendations", s.handleAddUserRecommendation)
			r.Delete("/recommendations/{bookId}", s.handleRemoveUserRecommendation)
		})
	})

	// Reader quiz flow.
	s.router.Route("/quiz", func(r chi.Router) {
		r.Post("/parent-consent", s.handleQuizConsent)
		r.Post("/complete", s.handleQuizComplete)
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListQuizUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetQuizUser)
				r.Put("/", s.handleUpdateQuizUser)
				r.Put("/basic-info", s.handleQuizBasicInfo)
				r.Put("/parent-reading", s.handleQuizParentReading)
				r.Put("/genres", s.handleQuizGenres)
				r.Put("/interests", s.handleQuizInterests)
				r.Put("/book-series", s.handleQuizBookSeries)
				r.Post("/book-series/response", s.handleQuizSeriesResponse)
				r.Post("/recommendations", s.handleSaveQuizRecommendations)
			})
		})
	})

	// Plan generation, rate limited per client IP.
	s.router.With(s.rateLimitByIP(s.planLimiter)).
		Post("/recommendation-plan", s.handleGeneratePlan)

	// Persisted plan administration.
	s.router.Route("/recommendation-plans", func(r chi.Router) {
		r.Get("/", s.handleListPlans)
		r.Delete("/", s.handleDeleteAllPlans)
		r.Delete("/{id}", s.handleDeletePlan)
	})

	// Redistribution.
	s.router.Post("/send-recommendations/email", s.handleSendEmail)
	s.router.Post("/send-recommendations/whatsapp", s.handleSendWhatsApp)
	s.router.Post("/test-whatsapp", s.handleTestWhatsApp)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Raw(w, http.StatusOK, map[string]string{"status": "healthy"}, s.logger)
}
