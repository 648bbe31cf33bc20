package appointments

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Handler exposes appointments over HTTP
type Handler struct {
	service    interfaces.AppointmentService
	middleware *auth.Middleware
	logger     *logger.Logger
}

// NewHandler creates a new appointment handler
func NewHandler(service interfaces.AppointmentService, middleware *auth.Middleware, log *logger.Logger) *Handler {
	return &Handler{service: service, middleware: middleware, logger: log}
}

// RegisterRoutes mounts appointment routes on a router that runs behind
// Authenticate
func (h *Handler) RegisterRoutes(router *mux.Router) {
	patients := []types.Role{types.RoleUser, types.RolePatient}

	router.HandleFunc("/appointments", h.middleware.RequireRole(h.bookHandler, patients...)).Methods(http.MethodPost)
	router.HandleFunc("/appointments/mine", h.middleware.RequireRole(h.listMineHandler, patients...)).Methods(http.MethodGet)
	router.HandleFunc("/appointments/{id}/cancel", h.middleware.RequireRole(h.cancelHandler, patients...)).Methods(http.MethodPost)

	router.HandleFunc("/appointments", h.middleware.RequireRole(h.listAllHandler, types.RoleDoctor)).Methods(http.MethodGet)
	router.HandleFunc("/appointments/{id}/status", h.middleware.RequireRole(h.updateStatusHandler, types.RoleDoctor)).Methods(http.MethodPut)
	router.HandleFunc("/doctor/patients", h.middleware.RequireRole(h.rosterHandler, types.RoleDoctor)).Methods(http.MethodGet)

	router.HandleFunc("/dashboard", h.dashboardHandler).Methods(http.MethodGet)
}

func (h *Handler) bookHandler(w http.ResponseWriter, r *http.Request) {
	var req types.BookAppointmentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	appointment, err := h.service.Book(r.Context(), session, &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, appointment)
}

func (h *Handler) listMineHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	appointments, err := h.service.ListMine(r.Context(), session)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"appointments": appointments})
}

func (h *Handler) listAllHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	params := r.URL.Query()
	appointments, err := h.service.ListAll(r.Context(), session, types.AppointmentQuery{
		Status:   params.Get("status"),
		DoctorID: params.Get("doctor_id"),
		Date:     params.Get("date"),
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"appointments": appointments})
}

func (h *Handler) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req types.StatusUpdateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	appointment, err := h.service.UpdateStatus(r.Context(), session, mux.Vars(r)["id"], req.Status)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, appointment)
}

func (h *Handler) cancelHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	appointment, err := h.service.Cancel(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, appointment)
}

func (h *Handler) rosterHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	roster, err := h.service.Roster(r.Context(), session)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"patients": roster})
}

func (h *Handler) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	stats, err := h.service.DashboardStats(r.Context(), session)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, stats)
}
