package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"premium-unlock/internal/domain"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the redemption taxonomy onto HTTP statuses. The
// burned-code fault keeps its own shape: presenting it as an invalid code
// would invite a retry that can never succeed.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedCode):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed_code"})
	case errors.Is(err, domain.ErrInvalidDurationSpec):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_duration_spec"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_argument"})
	case errors.Is(err, domain.ErrCodeNotFound), errors.Is(err, domain.ErrTokenNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		writeJSON(w, http.StatusConflict, errorBody{Error: "already_redeemed"})
	case errors.Is(err, domain.ErrCodeExpired):
		writeJSON(w, http.StatusGone, errorBody{Error: "code_expired"})
	case errors.Is(err, domain.ErrIssuanceFailed):
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "issuance_failed",
			Message: "activation failed on our side; contact support for a replacement code",
		})
	case errors.Is(err, domain.ErrGenerationExhausted):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "generation_exhausted"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "storage_unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	}
}
