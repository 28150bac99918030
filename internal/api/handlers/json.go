package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baharkarakas/rentacar-backend/internal/services"
)

const maxJSONBytes = 1 << 20

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &services.Error{Kind: services.KindValidation, Message: "invalid JSON body", Details: err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &services.Error{Kind: services.KindValidation, Message: "body must contain a single JSON object"}
	}
	return nil
}

func badForm(err error) error {
	return &services.Error{Kind: services.KindValidation, Message: "invalid form body", Details: err.Error(), Err: err}
}
