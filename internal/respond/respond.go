// Package respond writes JSON responses and maps classified errors to
// status codes for every HTTP handler.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"noteful/internal/apperr"

	"go.uber.org/zap"
)

func JSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Message(w http.ResponseWriter, message string, status int) {
	JSON(w, map[string]any{"status": status, "message": message}, status)
}

// Error writes err with the status apperr assigns to it. Server-side failures
// are logged and their details are hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if !apperr.Public(err) {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if status == http.StatusServiceUnavailable {
			Message(w, "service unavailable", status)
			return
		}
		Message(w, "internal server error", status)
		return
	}
	log.Debug("request rejected",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	Message(w, apperr.Message(err), status)
}

// DecodeJSON reads a JSON request body into v. A value of the wrong JSON
// type is a validation error naming the field; any other decode failure
// is apperr.ErrMalformedBody.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("%w: field '%s' must be type %s", apperr.ErrValidation, typeErr.Field, typeErr.Type)
	}
	return apperr.ErrMalformedBody
}

func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
