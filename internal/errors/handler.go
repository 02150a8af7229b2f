package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorHandler centralizes HTTP error responses: it maps errors onto
// APIError, logs server-side failures with the request context, and
// renders the standard error envelope.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger}
}

// HandleError renders err as a structured response. Unknown error types
// become a 500 without leaking internals to the client.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := h.toAPIError(err)

	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", apiErr.StatusCode),
			slog.String("error_code", apiErr.ErrorCode),
			slog.String("error", err.Error()))
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", apiErr.StatusCode),
			slog.String("error_code", apiErr.ErrorCode))
	}

	if renderErr := render.Render(w, r, NewErrorResponse(apiErr)); renderErr != nil {
		WriteError(w, apiErr)
	}
}

func (h *ErrorHandler) toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
}
