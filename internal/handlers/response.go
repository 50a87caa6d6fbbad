package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body shared by all endpoints
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Human readable error message
	// default: Not authenticated
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
