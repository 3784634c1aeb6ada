package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// DataResponse wraps every successful payload in a "data" envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondOne sends a single projected record inside the data envelope.
func RespondOne(w http.ResponseWriter, item any, statusCode int) {
	RespondJSON(w, DataResponse{Data: item}, statusCode)
}

// RespondList sends a collection of projected records inside the data envelope.
// A nil slice is emitted as an empty list, never as null.
func RespondList[T any](w http.ResponseWriter, items []T, statusCode int) {
	if items == nil {
		items = []T{}
	}
	RespondJSON(w, DataResponse{Data: items}, statusCode)
}

// RespondMessage sends a plain confirmation message inside the data envelope.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, DataResponse{Data: message}, statusCode)
}

// RespondError sends a JSON error response with the given message and status code.
// The status code is mirrored into the body so clients don't have to read headers.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: statusCode}, statusCode)
}
