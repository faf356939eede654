package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/apperrors"
	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/middleware"
	"github.com/benvon/toolhub/internal/request"
	"github.com/benvon/toolhub/internal/validation"
)

// maxMessageLength caps error messages echoed back to clients.
const maxMessageLength = 200

// respondJSON sends data as the top-level JSON body.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	if len(message) > maxMessageLength {
		return message[:maxMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, r *http.Request, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := middleware.ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   sanitizeErrorMessage(message),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		RequestID: request.RequestIDFromContext(r.Context()),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondServiceError maps err through the apperrors taxonomy. Internal
// failures are logged with their cause and answered with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondJSONError(w, r, http.StatusRequestEntityTooLarge, "request_too_large",
			"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request_failed",
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	respondJSONError(w, r, status, apperrors.Kind(err), apperrors.PublicMessage(err))
}

// decodeJSON reads a single JSON object into dst and validates it. Body size
// is already bounded by the request-size middleware.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return apperrors.Validation("", "request body is required")
		default:
			return apperrors.Validation("", "request body must be a JSON object")
		}
	}
	if dec.More() {
		return apperrors.Validation("", "request body must contain a single JSON object")
	}
	return validation.Struct(dst)
}

// queryInt parses an optional integer query parameter. Missing means zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Validation(name, "must be a non-negative integer")
	}
	return n, nil
}
