package schedules

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Handler exposes care schedules over HTTP
type Handler struct {
	service    *Service
	middleware *auth.Middleware
	logger     *logger.Logger
}

// NewHandler creates a new schedule handler
func NewHandler(service *Service, middleware *auth.Middleware, log *logger.Logger) *Handler {
	return &Handler{service: service, middleware: middleware, logger: log}
}

// RegisterRoutes mounts schedule routes behind Authenticate. GET lists the
// doctor's assigned items or, for everyone else, their own.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/schedules", h.middleware.RequireRole(h.createHandler, types.RoleDoctor)).Methods(http.MethodPost)
	router.HandleFunc("/schedules", h.listHandler).Methods(http.MethodGet)
}

func (h *Handler) createHandler(w http.ResponseWriter, r *http.Request) {
	var req types.CreateScheduleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	schedule, err := h.service.Create(r.Context(), session, &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, schedule)
}

func (h *Handler) listHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	list := h.service.ListForPatient
	if session != nil && session.Principal.Role == types.RoleDoctor {
		list = h.service.ListForDoctor
	}

	schedules, err := list(r.Context(), session)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}
