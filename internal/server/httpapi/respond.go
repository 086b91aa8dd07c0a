package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/passvault/internal/common"
)

const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError uses "fail" for client errors and "error" for server errors.
func writeError(w http.ResponseWriter, status int, msg string) {
	state := "fail"
	if status >= http.StatusInternalServerError {
		state = "error"
	}
	writeJSON(w, status, envelope{"status": state, "message": msg})
}

func writeSuccess(w http.ResponseWriter, status int, body envelope) {
	body["status"] = "success"
	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrorValidation)
		}
		return fmt.Errorf("%w: invalid request body", common.ErrorValidation)
	}
	return nil
}

// mapError writes the response for a service error. Unexpected errors are
// logged and reported without detail.
func (s *HTTPServer) mapError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, common.ErrDuplicateUsername.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, common.ErrInvalidCredentials.Error())
	case common.IsTokenError(err), errors.Is(err, common.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, common.ErrNotAuthenticated.Error())
	case errors.Is(err, common.ErrNotFoundOrForbidden):
		writeError(w, http.StatusNotFound, common.ErrNotFoundOrForbidden.Error())
	case errors.Is(err, common.ErrSecurityAnswerMismatch):
		writeError(w, http.StatusForbidden, common.ErrSecurityAnswerMismatch.Error())
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		if !errors.Is(err, common.ErrorInternal) {
			s.logger.Error(ctx, "unexpected service error", "error", err)
		}
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}
