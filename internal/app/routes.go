package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	h := deps.CalendarHandler
	r.HandleFunc("/api/calendar/event", h.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/event", h.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}/capabilities", h.GetCapabilities).Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}/move", h.MoveEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}/resize", h.ResizeEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", h.DeleteEvent).Methods("DELETE")
}
