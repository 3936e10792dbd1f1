package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "campus/pkg/domain-errors"
)

// Messages rendered when the underlying error must not reach the client.
const (
	InternalErrorMessage = "Error interno del servidor"
	BadBodyMessage       = "Cuerpo de la petición inválido"
)

// ErrorResponse is the JSON envelope for every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// Internal errors never echo their message; everything else is rendered as-is.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code == dErrors.CodeInternal {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: InternalErrorMessage,
		})
		return
	}

	resp := ErrorResponse{
		Error:   string(domainErr.Code),
		Message: domainErr.Message,
		Field:   domainErr.Field,
	}
	if resp.Message == "" {
		resp.Message = string(domainErr.Code)
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), resp)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized, dErrors.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeAccountInactive:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
