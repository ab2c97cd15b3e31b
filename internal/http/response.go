package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-api/internal/auth"
	"catalog-api/internal/lookup"
	"catalog-api/internal/service"
	"catalog-api/internal/validate"
)

// envelope is the uniform success body: {"success":true,"data":...}.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// errorBody is the uniform failure body produced by the central error mapper.
type errorBody struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Path      string            `json:"path"`
	Timestamp string            `json:"timestamp"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps domain and auth errors onto HTTP statuses. Unrecognized
// errors become opaque 500s; their details stay in the server log only.
func writeError(c *gin.Context, err error) {
	status, message, fields := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err) // surfaces in the request log
		message = "internal server error"
	}
	c.JSON(status, errorBody{
		Success: false,
		Error: errorDetail{
			Status:    status,
			Message:   message,
			Fields:    fields,
			Path:      c.Request.URL.Path,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func abortError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}

func classify(err error) (int, string, map[string]string) {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, "validation failed", verrs.Fields()
	}

	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, lookup.ErrNotFound):
		return http.StatusNotFound, "not found", nil
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already exists", nil
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", nil
	case errors.Is(err, service.ErrInvalidRegistrationPassword):
		return http.StatusForbidden, "invalid registration password", nil
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden", nil
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "authorization token required", nil
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token", nil
	}
	return http.StatusInternalServerError, err.Error(), nil
}

// badRequest reports malformed request syntax (bad JSON, bad path params).
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{
		Success: false,
		Error: errorDetail{
			Status:    http.StatusBadRequest,
			Message:   message,
			Path:      c.Request.URL.Path,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}
