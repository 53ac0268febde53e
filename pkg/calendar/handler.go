package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aiutox/erp-calendar/internal/rest"
	"github.com/aiutox/erp-calendar/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *Service
}

type EventDTO struct {
	UID        string    `json:"uid"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	AllDay     bool      `json:"all_day"`
	ReadOnly   bool      `json:"read_only"`
	SourceType string    `json:"source_type"`
}

type MoveRequestDTO struct {
	Target       time.Time `json:"target"`
	PreserveTime *bool     `json:"preserve_time,omitempty"`
}

type ResizeRequestDTO struct {
	Target       time.Time `json:"target"`
	Direction    Direction `json:"direction"`
	PreserveTime *bool     `json:"preserve_time,omitempty"`
}

type CapabilitiesDTO struct {
	Resizable bool `json:"resizable"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return
	}

	events, err := h.calendar.GetEvents(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	event, err := h.calendar.AddEvent(r.Context(), dtoToEvent(eventDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventToDTO(*event))
}

func (h *Handler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := eventUidVar(w, r)
	if !ok {
		return
	}
	event, err := h.calendar.GetEvent(r.Context(), eventUid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CapabilitiesDTO{Resizable: CanResize(*event)})
}

func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := eventUidVar(w, r)
	if !ok {
		return
	}
	var req MoveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Target.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing target", "'target' must be an RFC3339 date")
		return
	}
	log.Tracef("Moving event %s to %s", eventUid, req.Target)

	event, err := h.calendar.MoveEvent(r.Context(), eventUid, req.Target, req.PreserveTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventToDTO(*event))
}

func (h *Handler) ResizeEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := eventUidVar(w, r)
	if !ok {
		return
	}
	var req ResizeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Target.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing target", "'target' must be an RFC3339 date")
		return
	}
	if !req.Direction.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid direction", "'direction' must be 'left' or 'right'")
		return
	}
	log.Tracef("Resizing event %s (%s) to %s", eventUid, req.Direction, req.Target)

	event, err := h.calendar.ResizeEvent(r.Context(), eventUid, req.Target, req.Direction, req.PreserveTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventToDTO(*event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := eventUidVar(w, r)
	if !ok {
		return
	}
	if err := h.calendar.DeleteEvent(r.Context(), eventUid); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventUidVar(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	eventUid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event uid", err.Error())
		return uuid.Nil, false
	}
	return eventUid, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusUnprocessableEntity, validationErr.Message, validationErr.Field)
	case errors.Is(err, ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, invalidRangeMessage, err.Error())
	case errors.Is(err, ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found", err.Error())
	case errors.Is(err, ErrNotEditable):
		writeError(w, http.StatusConflict, "Event cannot be modified", err.Error())
	case errors.Is(err, user.ErrNoUser):
		writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		log.Errorf("calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, rest.ErrorResponse{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		UID:        e.UID.String(),
		Title:      e.Title,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		AllDay:     e.AllDay,
		ReadOnly:   e.ReadOnly,
		SourceType: string(e.SourceType),
	}
}

func dtoToEvent(e EventDTO) Event {
	return Event{
		Title:      e.Title,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		AllDay:     e.AllDay,
		ReadOnly:   e.ReadOnly,
		SourceType: SourceType(e.SourceType),
	}
}
