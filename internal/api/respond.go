package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gitlab.com/yelinaung/expense-tracker/internal/auth"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeInternalError logs err and answers 500 with a message that does not
// leak it.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger.Log.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(message)
	writeError(w, http.StatusInternalServerError, message)
}

// decodeJSON reads the body into dst, answering 400 or 413 when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// userID returns the authenticated caller, answering 401 when there is none.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization header is required")
		return 0, false
	}
	return id.ID, true
}

// expenseID parses the {id} path segment. Anything that is not a positive
// integer cannot name an expense.
func expenseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
