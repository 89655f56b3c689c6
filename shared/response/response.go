package response

import (
	"encoding/json"
	"net/http"
)

// MessageResponse is the body of error and acknowledgement responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes data as the JSON body of a response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

// Error is Message for failures.
func Error(w http.ResponseWriter, status int, msg string) {
	Message(w, status, msg)
}
