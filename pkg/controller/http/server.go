package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/trm-lab/argus/pkg/domain/model/auth"
	"github.com/trm-lab/argus/pkg/usecase"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases, resolver TokenResolver) *Server {
	r := chi.NewRouter()
	s := &Server{
		router: r,
		uc:     uc,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware(resolver))

		r.Route("/vendors", func(r chi.Router) {
			r.Post("/", s.createVendor)
			r.Get("/", s.listVendors)
			r.Get("/concentration-risk", s.concentrationRisk)

			r.Route("/approvals", func(r chi.Router) {
				r.Post("/workflows", s.createWorkflow)
				r.Get("/workflows/{workflowID}", s.getWorkflow)
				r.Post("/workflows/{workflowID}/steps/{stepOrder}/approve", s.submitDecision)
				r.Post("/workflows/{workflowID}/cancel", s.cancelWorkflow)
				r.Get("/pending", s.listPendingApprovals)
				r.Get("/statistics", s.workflowStatistics)
			})

			r.Route("/{vendorID}", func(r chi.Router) {
				r.Get("/", s.getVendor)
				r.Patch("/", s.updateVendor)
				r.Post("/status", s.changeVendorStatus)
				r.Post("/assessment", s.completeAssessment)
				r.Get("/issues", s.listVendorIssues)
				r.Post("/issues", s.openIssue)
				r.Get("/signals", s.listVendorSignals)
			})
		})

		r.Route("/issues", func(r chi.Router) {
			r.Get("/overdue", s.listOverdueIssues)
			r.Route("/{issueID}", func(r chi.Router) {
				r.Get("/", s.getIssue)
				r.Post("/cap", s.updateCorrectiveActionPlan)
				r.Post("/remediation", s.submitRemediation)
				r.Post("/validate", s.validateRemediation)
				r.Post("/accept-risk", s.acceptRisk)
				r.Post("/close", s.closeIssue)
				r.Post("/escalate", s.escalateIssue)
			})
		})

		r.Route("/monitoring", func(r chi.Router) {
			r.Post("/signals", s.recordSignal)
			r.Post("/signals/{signalID}/acknowledge", s.acknowledgeSignal)
			r.Post("/signals/{signalID}/resolve", s.resolveSignal)
			r.Get("/schedule", s.monitoringSchedule)
		})

		r.Route("/risk-appetite", func(r chi.Router) {
			r.Get("/", s.listRiskAppetite)
			r.Get("/breaches", s.listAppetiteBreaches)
			r.Post("/evaluate", s.evaluateRiskAppetite)
		})

		r.Get("/audit", s.listAuditEntries)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// identityOf returns the authenticated identity; the auth middleware
// guarantees its presence on every /api/v1 route.
func identityOf(r *http.Request) *auth.Identity {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		return &auth.Identity{}
	}
	return id
}
