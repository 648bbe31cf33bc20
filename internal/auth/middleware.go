package auth

import (
	"context"
	"net/http"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

type sessionKey struct{}

// ContextWithSession attaches session to ctx
func ContextWithSession(ctx context.Context, session *types.Session) context.Context {
	ctx = logger.ContextWithUser(ctx, session.Principal.ID, string(session.Principal.Role))
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session attached by Authenticate
func SessionFromContext(ctx context.Context) (*types.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*types.Session)
	return session, ok && session != nil
}

// Middleware resolves bearer tokens into sessions
type Middleware struct {
	auth   interfaces.AuthService
	logger *logger.Logger
}

// NewMiddleware creates session middleware backed by auth
func NewMiddleware(auth interfaces.AuthService, log *logger.Logger) *Middleware {
	return &Middleware{auth: auth, logger: log}
}

// Authenticate rejects requests without a live session
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := respond.BearerToken(r)
		if !ok {
			respond.Error(w, r, m.logger, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Missing or malformed authorization header"))
			return
		}

		session, err := m.auth.ResolveSession(r.Context(), token)
		if err != nil {
			respond.Error(w, r, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// Optional attaches a session when a valid token is present and otherwise
// lets the request through signed out
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := respond.BearerToken(r); ok {
			if session, err := m.auth.ResolveSession(r.Context(), token); err == nil {
				r = r.WithContext(ContextWithSession(r.Context(), session))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole wraps h so only sessions holding one of roles reach it.
// It must run behind Authenticate.
func (m *Middleware) RequireRole(h http.HandlerFunc, roles ...types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			respond.Error(w, r, m.logger, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Sign in required"))
			return
		}

		for _, role := range roles {
			if session.Principal.Role == role {
				h(w, r)
				return
			}
		}

		m.logger.Security(r.Context(), "role_violation", session.Principal.ID, map[string]interface{}{
			"role": session.Principal.Role,
			"path": r.URL.Path,
		})
		respond.Error(w, r, m.logger, types.NewAuthorizationError(types.ErrCodeForbidden, "This action is not available to your role"))
	}
}
