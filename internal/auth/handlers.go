package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Handler exposes the auth service over HTTP
type Handler struct {
	service    *Service
	middleware *Middleware
	logger     *logger.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service *Service, middleware *Middleware, log *logger.Logger) *Handler {
	return &Handler{service: service, middleware: middleware, logger: log}
}

// RegisterRoutes mounts auth routes. public serves signed-out callers,
// protected runs behind Authenticate.
func (h *Handler) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/auth/signup", h.signUpHandler).Methods(http.MethodPost)
	public.HandleFunc("/auth/signin", h.signInHandler).Methods(http.MethodPost)
	public.HandleFunc("/auth/doctor/signin", h.doctorSignInHandler).Methods(http.MethodPost)
	public.HandleFunc("/auth/signout", h.signOutHandler).Methods(http.MethodPost)
	public.Handle("/auth/routes", h.middleware.Optional(http.HandlerFunc(h.resolveRouteHandler))).Methods(http.MethodGet)

	protected.HandleFunc("/auth/session", h.sessionHandler).Methods(http.MethodGet)
	protected.HandleFunc("/me", h.profileHandler).Methods(http.MethodGet)
	protected.HandleFunc("/me", h.updateProfileHandler).Methods(http.MethodPut)
	protected.HandleFunc("/doctors", h.doctorsHandler).Methods(http.MethodGet)
}

func (h *Handler) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req types.SignUpRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	user, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"user":     user,
		"redirect": SignInPath,
	})
}

func (h *Handler) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req types.SignInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	result, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

func (h *Handler) doctorSignInHandler(w http.ResponseWriter, r *http.Request) {
	var req types.DoctorSignInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	result, err := h.service.DoctorSignIn(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

func (h *Handler) signOutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := respond.BearerToken(r)
	if !ok {
		respond.Error(w, r, h.logger, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Missing or malformed authorization header"))
		return
	}

	redirect, err := h.service.SignOut(r.Context(), token)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}

func (h *Handler) sessionHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	respond.JSON(w, http.StatusOK, types.SessionView{
		Session:    session,
		Dashboard:  DashboardPath(session.Principal.Role),
		Navigation: Navigation(session.Principal.Role),
	})
}

func (h *Handler) resolveRouteHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respond.Error(w, r, h.logger, types.NewValidationError(types.ErrCodeInvalidInput, "Query parameter path is required", nil))
		return
	}

	session, _ := SessionFromContext(r.Context())
	respond.JSON(w, http.StatusOK, ResolveRoute(session, path))
}

func (h *Handler) profileHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	profile, err := h.service.Profile(r.Context(), session)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, profile)
}

func (h *Handler) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var updates types.ProfileUpdates
	if err := respond.Decode(r, &updates); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	session, _ := SessionFromContext(r.Context())
	profile, err := h.service.UpdateProfile(r.Context(), session, &updates)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, profile)
}

func (h *Handler) doctorsHandler(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.Doctors(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if doctors == nil {
		doctors = []*types.Doctor{}
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"doctors": doctors})
}
