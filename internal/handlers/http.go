package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrCodeVotingClosed      = "VOTING_CLOSED"
	ErrCodeAlreadyVoted      = "ALREADY_VOTED"
	ErrCodeWrongPin          = "WRONG_PIN"
	ErrCodeInvalidOption     = "INVALID_OPTION"
	ErrCodeDuplicateNickname = "DUPLICATE_NICKNAME"
	ErrCodeDuplicateContact  = "DUPLICATE_CONTACT"
	ErrCodeSessionExpired    = "SESSION_EXPIRED"
	ErrCodeAlreadyRegistered = "ALREADY_REGISTERED"
	ErrCodeNotRegistered     = "NOT_REGISTERED"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message and code
func Conflict(code, message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: code, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// serviceErrorCodes maps service sentinel errors to API status and code.
var serviceErrorCodes = map[*services.ServiceError]struct {
	status int
	code   string
}{
	services.ErrVotingClosed:      {http.StatusForbidden, ErrCodeVotingClosed},
	services.ErrWrongPin:          {http.StatusUnauthorized, ErrCodeWrongPin},
	services.ErrInvalidOption:     {http.StatusBadRequest, ErrCodeInvalidOption},
	services.ErrAlreadyVoted:      {http.StatusConflict, ErrCodeAlreadyVoted},
	services.ErrDuplicateNickname: {http.StatusConflict, ErrCodeDuplicateNickname},
	services.ErrDuplicateContact:  {http.StatusConflict, ErrCodeDuplicateContact},
	services.ErrInvalidInput:      {http.StatusBadRequest, ErrCodeValidation},
	services.ErrSessionExpired:    {http.StatusUnauthorized, ErrCodeSessionExpired},
	services.ErrPinRequired:       {http.StatusUnauthorized, ErrCodeSessionExpired},
	services.ErrAlreadyIdentified: {http.StatusConflict, ErrCodeAlreadyRegistered},
	services.ErrNotIdentified:     {http.StatusForbidden, ErrCodeNotRegistered},
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	// Check for application errors first
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return Conflict(ErrCodeConflict, appErr.Message)
		case errors.ErrUnauthorized:
			return Unauthorized(appErr.Message)
		case errors.ErrClosed:
			return &APIError{Status: http.StatusForbidden, Code: ErrCodeVotingClosed, Message: appErr.Message}
		default:
			return InternalError(err)
		}
	}

	if svcErr, ok := err.(*services.ServiceError); ok {
		if m, known := serviceErrorCodes[svcErr]; known {
			return &APIError{Status: m.status, Code: m.code, Message: svcErr.Message}
		}
		return BadRequest(svcErr.Message)
	}

	return InternalError(err)
}
