package helpers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/oroshop/fulfillment-service/internal/apperr"
)

const maxBodyBytes = 1 << 20

// DecodeJSON parses a request body strictly: unknown fields are rejected and
// bodies are capped at 1 MiB.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func HttpError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteAppError maps an engine error onto the wire error taxonomy.
func WriteAppError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.HTTPStatus(err), map[string]string{
		"error": err.Error(),
		"kind":  apperr.Kind(err),
	})
}
