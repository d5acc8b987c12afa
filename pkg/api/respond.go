package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/log"
)

// Respond writes a JSON response with the given status code. Grounded
// on wisbric-nightowl's httpserver.Respond.
func Respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithComponent("api").Warn().Err(err).Msg("encoding response")
	}
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RespondError writes a JSON error response.
func RespondError(w http.ResponseWriter, status int, errCode, message string) {
	Respond(w, status, ErrorResponse{Error: errCode, Message: message})
}

// RespondErr maps an apperr sentinel (or anything else) to a status
// code and writes it, per the error taxonomy in SPEC_FULL §7.
func RespondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		RespondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, apperr.ErrValidation):
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, apperr.ErrTokenInvalid), errors.Is(err, apperr.ErrTokenExpired):
		RespondError(w, http.StatusBadRequest, "token_invalid", err.Error())
	case errors.Is(err, apperr.ErrDecrypt):
		RespondError(w, http.StatusInternalServerError, "internal", "credential could not be decrypted")
	default:
		RespondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// Decode reads a JSON request body into dst, rejecting unknown fields
// and trailing data. Grounded on wisbric-nightowl's httpserver.Decode.
func Decode(r *http.Request, dst any) error {
	const maxBody = 1 << 20 // 1 MiB

	body := http.MaxBytesReader(nil, r.Body, maxBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return fmt.Errorf("request body too large (max 1 MiB)")
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty")
		default:
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
</content>
