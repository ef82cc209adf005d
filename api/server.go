/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Auth:       Bearer-token actor resolution (disabled when no secret)

ROLES:
  Reads are open to any authenticated actor. Mutations require the
  recruiter or admin role; deletes require admin.

ROUTE GROUPS:
  /api/companies/*      Client companies and their payments
  /api/candidates/*     Candidates, fee structures, documents
  /api/jobs/*           Job openings and attachments
  /api/interviews/*     Interview pipeline incl. the JOINED transition
  /api/placements/*     Placement-income receivables and installments
  /api/payments/*       Unified ledger and company-payment edits
  /api/scenarios/*      Demo data loading
  /files/*              Uploaded documents (static)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth/auth.go: Token parsing and role guards
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/talentdesk/placement-engine/auth"
)

// RouterOptions carries deployment settings the router needs beyond the
// handler itself.
type RouterOptions struct {
	AuthSecret  string
	CORSOrigins []string
	FileRoot    string // directory served at FileBaseURL; empty disables
	FileBaseURL string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	mutate := auth.RequireRole("admin", "recruiter")
	remove := auth.RequireRole("admin")

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(opts.AuthSecret))

		// Company routes
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.With(mutate).Post("/", h.CreateCompany)
			r.Get("/{id}", h.GetCompany)
			r.With(mutate).Put("/{id}", h.UpdateCompany)
			r.With(remove).Delete("/{id}", h.DeleteCompany)
			r.With(mutate).Post("/{id}/payments", h.CreateCompanyPayment)
		})

		// Candidate routes
		r.Route("/candidates", func(r chi.Router) {
			r.Get("/", h.ListCandidates)
			r.With(mutate).Post("/", h.CreateCandidate)
			r.Get("/{id}", h.GetCandidate)
			r.With(mutate).Put("/{id}", h.UpdateCandidate)
			r.With(remove).Delete("/{id}", h.DeleteCandidate)
			r.With(mutate).Post("/{id}/upload", h.UploadCandidateDocuments)
		})

		// Job routes
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.With(mutate).Post("/", h.CreateJob)
			r.Get("/{id}", h.GetJob)
			r.With(mutate).Put("/{id}", h.UpdateJob)
			r.With(mutate).Patch("/{id}/status", h.UpdateJobStatus)
			r.With(remove).Delete("/{id}", h.DeleteJob)
			r.With(mutate).Post("/{id}/attachments", h.UploadJobAttachment)
		})

		// Interview routes
		r.Route("/interviews", func(r chi.Router) {
			r.Get("/", h.ListInterviews)
			r.With(mutate).Post("/", h.CreateInterview)
			r.Get("/{id}", h.GetInterview)
			r.With(mutate).Put("/{id}", h.UpdateInterview)
			r.With(mutate).Patch("/{id}/status", h.UpdateInterviewStatus)
			r.With(remove).Delete("/{id}", h.DeleteInterview)
		})

		// Placement receivable routes
		r.Route("/placements", func(r chi.Router) {
			r.Get("/", h.ListReceivables)
			r.Get("/{id}", h.GetReceivable)
			r.Get("/{id}/payments", h.ListInstallments)
			r.With(mutate).Post("/{id}/payments", h.PostInstallment)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/ledger", h.GetLedger)
			r.With(mutate).Put("/{id}", h.UpdateCompanyPayment)
			r.With(remove).Delete("/{id}", h.DeleteCompanyPayment)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.With(mutate).Post("/load", h.LoadScenario)
		})
	})

	// Serve uploaded documents
	if opts.FileRoot != "" && opts.FileBaseURL != "" {
		fileServer := http.StripPrefix(opts.FileBaseURL, http.FileServer(http.Dir(opts.FileRoot)))
		r.Get(opts.FileBaseURL+"/*", fileServer.ServeHTTP)
	}

	return r
}
