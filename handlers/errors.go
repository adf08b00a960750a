package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
)

const genericErrorMessage = "Something went wrong. Please try again."

var (
	errMalformedBody   = errors.New("request body is not valid")
	errUnknownGSTSplit = errors.New("gst_split must be cgst_sgst or igst")
)

func isRequestError(err error) bool {
	return errors.Is(err, errMalformedBody) || errors.Is(err, errUnknownGSTSplit)
}

// errorResponse is the JSON body of every rejected billing request.
type errorResponse struct {
	ErrorKind string                   `json:"errorKind"`
	Message   string                   `json:"message"`
	Line      int                      `json:"line,omitempty"`
	ItemRef   string                   `json:"item_ref,omitempty"`
	Requested *float64                 `json:"requested,omitempty"`
	Remaining *float64                 `json:"remaining,omitempty"`
	Items     []services.QuantityError `json:"items,omitempty"`
	Retryable bool                     `json:"retryable,omitempty"`
}

// statusForKind maps a billing error kind to its HTTP status.
func statusForKind(kind string) int {
	switch kind {
	case "NotFound", "ProjectNotFound":
		return http.StatusNotFound
	case "AmbiguousReference", "OverQuantity":
		return http.StatusUnprocessableEntity
	case "ConcurrentOverCommit":
		return http.StatusConflict
	case "InvalidQuantity", "EmptyInvoice", "InvalidRequest":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func newErrorResponse(err error) errorResponse {
	kind := services.ErrorKind(err)
	if kind == "" {
		return errorResponse{ErrorKind: "Internal", Message: genericErrorMessage}
	}

	resp := errorResponse{ErrorKind: kind, Message: err.Error(), Retryable: services.IsRetryable(err)}
	var ce *services.CommitError
	if errors.As(err, &ce) {
		resp.Line = ce.Line
		resp.ItemRef = ce.ItemRef
		resp.Items = ce.Items
		if kind == "OverQuantity" || kind == "ConcurrentOverCommit" {
			requested, remaining := ce.Requested, ce.Remaining
			resp.Requested = &requested
			resp.Remaining = &remaining
		}
	}
	return resp
}

// writeBillingError translates a service error into the JSON envelope, or an
// error toast for HTMX requests. Unclassified errors are logged and never
// leak their message.
func writeBillingError(e *core.RequestEvent, logPrefix string, err error) error {
	resp := newErrorResponse(err)
	status := statusForKind(resp.ErrorKind)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", logPrefix, err)
	}

	if isHTMX(e) {
		return ErrorToast(e, status, resp.Message)
	}
	return e.JSON(status, resp)
}

// badRequest rejects a malformed request body.
func badRequest(e *core.RequestEvent, message string) error {
	if isHTMX(e) {
		return ErrorToast(e, http.StatusBadRequest, message)
	}
	return e.JSON(http.StatusBadRequest, errorResponse{ErrorKind: "InvalidRequest", Message: message})
}

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}
