package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	loanHandler "github.com/fintechfusion/loan-officer/internal/handler/loan"
	middlewarePkg "github.com/fintechfusion/loan-officer/internal/middleware"
	"github.com/fintechfusion/loan-officer/internal/service/conversation"
	"github.com/fintechfusion/loan-officer/internal/service/sanction"
	"github.com/fintechfusion/loan-officer/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(convSvc *conversation.Service, letters *sanction.Renderer, maxUploadBytes int64) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	h := loanHandler.New(convSvc, letters, maxUploadBytes)

	r.Route("/api", func(api chi.Router) {
		h.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":  "ok",
				"service": "Digital Loan Officer",
			})
		})
	})

	return r
}
