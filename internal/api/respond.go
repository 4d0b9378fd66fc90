package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/cep"
	"github.com/hackgods/clinidesk/internal/registration"
	"github.com/hackgods/clinidesk/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func writeFieldErrors(w http.ResponseWriter, code string, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   code,
		Details: "one or more fields are invalid",
		Fields:  fields,
	})
}

// decodeJSON reads the body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func handleScheduleError(w http.ResponseWriter, err error) {
	var verr *schedule.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldErrors(w, "invalid_work_hours", map[string]string{verr.Field: verr.Message})
	case errors.Is(err, schedule.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, schedule.ErrInvalidEventID):
		writeError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
	case errors.Is(err, schedule.ErrInvalidRange),
		errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrMissingStart),
		errors.Is(err, schedule.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_appointment", err.Error())
	case errors.Is(err, schedule.ErrUnknownPatient),
		errors.Is(err, schedule.ErrUnknownType),
		errors.Is(err, schedule.ErrUnknownHealthPlan):
		writeError(w, http.StatusUnprocessableEntity, "unknown_reference", err.Error())
	case errors.Is(err, schedule.ErrIncompleteDraft):
		writeError(w, http.StatusUnprocessableEntity, "incomplete_appointment", err.Error())
	case errors.Is(err, schedule.ErrOutsideWorkHours):
		writeError(w, http.StatusUnprocessableEntity, "outside_work_hours", err.Error())
	case errors.Is(err, schedule.ErrEditorClosed):
		writeError(w, http.StatusConflict, "editor_closed", err.Error())
	case errors.Is(err, schedule.ErrWorkspaceBusy):
		writeError(w, http.StatusConflict, "workspace_busy", "calendar is being modified, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// handleUpstreamError maps backend and CEP failures.
func handleUpstreamError(w http.ResponseWriter, err error) {
	var fields registration.FieldErrors
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &fields):
		writeFieldErrors(w, "invalid_form", fields)
	case errors.Is(err, cep.ErrInvalidCEP):
		writeError(w, http.StatusBadRequest, "invalid_cep", err.Error())
	case errors.Is(err, cep.ErrNotFound):
		writeError(w, http.StatusNotFound, "cep_not_found", err.Error())
	case errors.Is(err, cep.ErrLookupFailed):
		writeError(w, http.StatusBadGateway, "cep_lookup_failed", cep.ErrLookupFailed.Error())
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			writeError(w, http.StatusUnauthorized, "unauthorized", apiErr.Detail)
		case apiErr.StatusCode == http.StatusForbidden:
			writeError(w, http.StatusForbidden, "forbidden", apiErr.Detail)
		case apiErr.StatusCode == http.StatusNotFound:
			writeError(w, http.StatusNotFound, "not_found", apiErr.Detail)
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			writeError(w, http.StatusUnprocessableEntity, "backend_rejected", apiErr.Detail)
		default:
			writeError(w, http.StatusBadGateway, "backend_error", apiErr.Detail)
		}
	default:
		writeError(w, http.StatusBadGateway, "backend_unavailable", err.Error())
	}
}
