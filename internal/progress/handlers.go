package progress

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Handler exposes progress reports over HTTP
type Handler struct {
	service    *Service
	middleware *auth.Middleware
	logger     *logger.Logger
}

// NewHandler creates a new progress handler
func NewHandler(service *Service, middleware *auth.Middleware, log *logger.Logger) *Handler {
	return &Handler{service: service, middleware: middleware, logger: log}
}

// RegisterRoutes mounts progress routes behind Authenticate
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/patient/progress", h.middleware.RequireRole(h.myProgressHandler, types.RolePatient)).Methods(http.MethodGet)
	router.HandleFunc("/doctor/patients/{id}/progress", h.middleware.RequireRole(h.patientProgressHandler, types.RoleDoctor)).Methods(http.MethodGet)
	router.HandleFunc("/doctor/patients/{id}/progress", h.middleware.RequireRole(h.recordHandler, types.RoleDoctor)).Methods(http.MethodPost)
}

func (h *Handler) myProgressHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	report, err := h.service.MyProgress(r.Context(), session)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) patientProgressHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	report, err := h.service.PatientProgress(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) recordHandler(w http.ResponseWriter, r *http.Request) {
	var req types.RecordProgressRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	entry, err := h.service.Record(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, entry)
}
