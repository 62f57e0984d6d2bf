package utils

import (
	"encoding/json"
	"net/http"
)

// Stable error codes shared by handlers and middleware.
const (
	CodeServerError     = "SERVER_ERROR"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// MessageResponse is the body of requests that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// ResponseJSON writes payload as JSON with the given status code.
func ResponseJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, payload any) {
	ResponseJSON(w, http.StatusOK, payload)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, payload any) {
	ResponseJSON(w, http.StatusCreated, payload)
}

// returns 200 OK with only a message
func ResponseMessage(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// ------------- Error responses -------------

// ResponseError writes {message, error} with the given status code.
func ResponseError(w http.ResponseWriter, code int, message, errCode string) {
	ResponseJSON(w, code, ErrorResponse{Message: message, Error: errCode})
}

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message, errCode string) {
	ResponseError(w, http.StatusBadRequest, message, errCode)
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message, errCode string) {
	ResponseError(w, http.StatusUnauthorized, message, errCode)
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusTooManyRequests, message, CodeTooManyRequests)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter) {
	ResponseError(w, http.StatusInternalServerError, "Internal server error", CodeServerError)
}
