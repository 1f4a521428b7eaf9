package handler

import (
	"net/http"
	"strings"

	"github.com/pkordes/rail-log/backend/internal/domain"
)

// ErrorResponse is the error body shape shared by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes an ErrorResponse with the given status, code, and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// notFound writes the 404 body. The caller supplies the human-readable
// message (e.g. "ride not found") because the handler is the layer that
// knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

// validationFailed writes the 422 body for a domain validation failure,
// extracting the message from the wrapped domain.ErrValidation error.
func validationFailed(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
}

// badRequest writes the 400 body for a request rejected before reaching the
// service layer (e.g. missing or malformed body).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

// unauthorized writes the 401 body for requests without a usable identity.
func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid "+userIDHeader+" header")
}

// internalError writes the opaque 500 body. Store errors are surfaced to the
// user as a retryable failure without leaking store internals.
func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please retry")
}

// unwrapMessage extracts the human-readable part from a wrapped validation
// error by stripping everything up to and including the sentinel text, so
// wrap prefixes added by any layer never reach clients.
// e.g. "service.RideService.Create: validation error: ride date is required"
// → "ride date is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	sentinel := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, sentinel); i >= 0 {
		return msg[i+len(sentinel):]
	}
	return msg
}
