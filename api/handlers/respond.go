package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/config"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// writeError maps domain errors to status codes
func writeError(w http.ResponseWriter, message string, err error) {
	var (
		verr     *models.ValidationError
		notFound *models.NotFoundError
		authz    *models.AuthorizationError
		conflict *models.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.As(err, &notFound):
		config.ErrorStatus(message, http.StatusNotFound, w, err)
	case errors.As(err, &authz):
		config.ErrorStatus(message, http.StatusForbidden, w, err)
	case errors.As(err, &conflict):
		config.ErrorStatus(message, http.StatusConflict, w, err)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// decode reads a JSON body into v, answering 400 itself on failure
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return false
	}
	return true
}

// identity returns the session identity set by the auth middleware
func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := api.IdentityFrom(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
	}
	return id, ok
}

func getPage(r *http.Request) int {
	return queryInt(r, "page", 0)
}

func getLimit(r *http.Request) int {
	return queryInt(r, "limit", 0)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		zap.S().Warnf(fmt.Sprintf("invalid %s %q, using default of %v", key, raw, fallback))
		return fallback
	}
	return n
}
