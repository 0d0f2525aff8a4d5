package handler

import (
	"fmt"
	"net/http"

	"github.com/notesync/notesync/internal/service"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// EventsHandler streams auth-state change events to the browser over SSE.
type EventsHandler struct {
	events *service.AuthEventBroadcaster
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.AuthEventBroadcaster) *EventsHandler {
	return &EventsHandler{events: events}
}

// HandleStream subscribes the connection to auth-state events and patches
// each one into the page's signals until the client disconnects. The reset
// view watches the authEvent signal for PASSWORD_RECOVERY.
// GET /api/auth/events
func (h *EventsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	id, ch := h.events.Subscribe()
	defer h.events.Unsubscribe(id)

	sse := datastar.NewSSE(w, r)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			sse.PatchSignals([]byte(fmt.Sprintf(`{"authEvent":%q}`, event.Type)))
		}
	}
}
