package httpapi

import (
	"encoding/json"
	"net/http"

	"rembgd/internal/imaging"
	"rembgd/pkg/types"
)

// HTTPError lets service errors carry their own status code.
type HTTPError interface {
	error
	StatusCode() int
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the error envelope used by all non-2xx responses.
func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg, Code: code})
}

// writeRejection writes a 400 for an upload that failed validation, tagging
// the response with the machine-readable rejection reason.
func writeRejection(w http.ResponseWriter, ve *imaging.ValidationError) {
	writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
		Error:  ve.Error(),
		Reason: string(ve.Reason),
		Code:   http.StatusBadRequest,
	})
}
