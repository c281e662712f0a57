package rest

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps a domain error to its HTTP status and a stable error body.
// Unknown errors never leak internals; they report a generic message.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()

	detail := errorDetail{Code: string(code)}
	if domainErr, ok := err.(*apperrors.Error); ok {
		detail.Message = domainErr.Message
		detail.Metadata = domainErr.Metadata
	} else if status >= 500 {
		detail.Message = "internal error"
	} else {
		detail.Message = err.Error()
	}
	if status >= 500 {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(out); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}
