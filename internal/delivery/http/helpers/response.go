package helpers

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope for every API response.
// On success: Success is true and Data is set. On error: Success is false
// and Message carries a human-readable explanation. Pagination is present
// only on paginated listings.
// swagger:model APIResponse
type APIResponse struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// WriteSuccess writes statusCode and an envelope with the given data.
func WriteSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Success: true, Data: data})
}

// WriteSuccessMessage writes statusCode and an envelope with data and a message.
func WriteSuccessMessage(w http.ResponseWriter, statusCode int, data any, message string) {
	writeJSON(w, statusCode, APIResponse{Success: true, Data: data, Message: message})
}

// WritePage writes a 200 envelope with data and pagination metadata.
func WritePage(w http.ResponseWriter, data any, meta PaginationMeta) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Pagination: &meta})
}

// WriteError writes statusCode and an envelope with success=false and the message.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
