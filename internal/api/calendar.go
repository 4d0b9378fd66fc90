package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinidesk/internal/schedule"
)

type calendarHandlers struct {
	svc *schedule.Service
}

func owner(r *http.Request) string {
	return mustClaims(r).UserID
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (schedule.EventID, bool) {
	id, err := schedule.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_id", "id must be a persisted id or new-<local id>")
		return schedule.EventID{}, false
	}
	return id, true
}

func rangeBody(w http.ResponseWriter, r *http.Request) (schedule.Range, bool) {
	var rng schedule.Range
	if err := decodeJSON(r, &rng); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return rng, false
	}
	if rng.Start.IsZero() || rng.End.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_range", "start and end are required")
		return rng, false
	}
	return rng, true
}

func (h calendarHandlers) events(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Events(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Stats(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) options(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Options(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) lookups(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Lookups(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) selectRange(w http.ResponseWriter, r *http.Request) {
	rng, ok := rangeBody(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Select(r.Context(), owner(r), rng)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) click(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Click(r.Context(), owner(r), id)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) drop(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Drop)
}

func (h calendarHandlers) resize(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Resize)
}

func (h calendarHandlers) move(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, ownerID string, id schedule.EventID, rng schedule.Range) (schedule.Event, error)) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	rng, ok := rangeBody(w, r)
	if !ok {
		return
	}
	out, err := apply(r.Context(), owner(r), id, rng)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule.Render([]schedule.Event{out})[0])
}

func (h calendarHandlers) editorState(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.EditorState(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) openEditor(w http.ResponseWriter, r *http.Request) {
	var req OpenEditorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	out, err := h.svc.OpenEditor(r.Context(), owner(r), req.ID)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) updateEditor(w http.ResponseWriter, r *http.Request) {
	var patch schedule.EditorPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	out, err := h.svc.UpdateEditor(r.Context(), owner(r), patch)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) saveEditor(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.SaveEditor(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) deleteEditor(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.DeleteEditor(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Removed: removed})
}

func (h calendarHandlers) closeEditor(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseEditor(r.Context(), owner(r)); err != nil {
		handleScheduleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h calendarHandlers) workHours(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.WorkHours(r.Context(), owner(r))
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) updateWorkHours(w http.ResponseWriter, r *http.Request) {
	var req schedule.WorkHours
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	out, err := h.svc.UpdateWorkHours(r.Context(), owner(r), req)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h calendarHandlers) toggleDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_day", "day must be a weekday number between 0 and 6")
		return
	}
	out, err := h.svc.ToggleDay(r.Context(), owner(r), day)
	if err != nil {
		handleScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
