package chatbot

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Handler exposes the assistant over HTTP
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new chatbot handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes mounts chatbot routes behind Authenticate
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chatbot", h.startHandler).Methods(http.MethodGet)
	router.HandleFunc("/chatbot/messages", h.replyHandler).Methods(http.MethodPost)
}

func (h *Handler) startHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Sign in required"))
		return
	}

	respond.JSON(w, http.StatusOK, h.service.Start(session.Principal.Role))
}

func (h *Handler) replyHandler(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	reply, err := h.service.Reply(r.Context(), session, &req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, reply)
}
