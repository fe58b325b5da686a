package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gamebank/ledger"

	log "github.com/sirupsen/logrus"
)

// Every response uses the {data, error} envelope the mobile client consumes:
// error is null on success, otherwise a {type, message} with a message fit for
// direct display in an alert.

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type envelope struct {
	Data  interface{} `json:"data"`
	Error *apiError   `json:"error"`
}

func respondData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, err error) {
	kind := ledger.KindOf(err)
	status := statusForKind(kind)

	if kind == ledger.KindTransient {
		log.WithError(err).Error("Ledger operation failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := envelope{Error: &apiError{Type: kind.String(), Message: err.Error()}}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		log.WithError(encodeErr).Error("Failed to encode error response")
	}
}

func respondValidation(w http.ResponseWriter, format string, args ...interface{}) {
	respondError(w, ledger.Validationf(format, args...))
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ledger.Validationf("invalid request body: %v", err)
	}
	return nil
}

func statusForKind(kind ledger.Kind) int {
	switch kind {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseTeamID(raw string) (uint, error) {
	teamID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || teamID == 0 {
		return 0, ledger.Validationf("team_id must be a positive integer")
	}
	return uint(teamID), nil
}
