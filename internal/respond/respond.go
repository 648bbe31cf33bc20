// Package respond holds the JSON helpers shared by every HTTP handler.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the envelope written for every failed request
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Type      types.ErrorType        `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// JSON writes data with the given status
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error maps err to a status and writes the error envelope. Internal
// failures are logged and their cause is never sent to the client.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status := types.HTTPStatus(err)

	detail := ErrorDetail{
		Type:      types.ErrorTypeInternal,
		Code:      types.ErrCodeInternalError,
		Message:   "Internal server error",
		RequestID: logger.RequestIDFromContext(r.Context()),
	}

	if pe, ok := types.AsPortalError(err); ok {
		detail.Type = pe.Type
		detail.Code = pe.Code
		detail.Details = pe.Details
		if status < http.StatusInternalServerError || pe.Type == types.ErrorTypeExternal {
			detail.Message = pe.Message
		}
	}

	if status >= http.StatusInternalServerError && log != nil {
		log.WithContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}

	JSON(w, status, ErrorBody{Error: detail})
}

// Decode reads a JSON request body into dst, rejecting unknown fields
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return types.NewValidationError(types.ErrCodeInvalidInput, "Request body is required", nil)
		}
		return types.NewValidationError(types.ErrCodeInvalidInput, "Invalid request body", map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// ClientIP returns the caller address, honouring the first X-Forwarded-For hop
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
