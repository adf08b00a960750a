package handlers

import (
	"encoding/json"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// ToastKind selects the styling of a client-side toast.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

// Client events fired through HX-Trigger.
const (
	eventShowToast       = "showToast"
	eventBalancesChanged = "balancesChanged"
)

// triggerEvent adds an event to the HX-Trigger header, keeping any events a
// previous call already queued on the same response.
func triggerEvent(e *core.RequestEvent, name string, detail any) {
	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			log.Printf("toast: discarding malformed HX-Trigger %q: %v", existing, err)
			events = map[string]any{}
		}
	}
	events[name] = detail

	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("toast: marshal HX-Trigger: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// SetToast queues a toast notification for HTMX clients.
func SetToast(e *core.RequestEvent, kind ToastKind, message string) {
	triggerEvent(e, eventShowToast, map[string]string{
		"message": message,
		"type":    string(kind),
	})
}

// notifyBalancesChanged tells open balance views of a project to refresh.
func notifyBalancesChanged(e *core.RequestEvent, projectID string) {
	triggerEvent(e, eventBalancesChanged, map[string]string{"project": projectID})
}

// ErrorToast shows message as an error toast and writes it as the body with
// HX-Reswap: none so HTMX leaves the page untouched.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, ToastError, message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
