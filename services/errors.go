package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the ledger, reconciler and commit guard.
var (
	ErrNotFound             = errors.New("billing: boq item not found")
	ErrAmbiguousReference   = errors.New("billing: ambiguous boq item reference")
	ErrOverQuantity         = errors.New("billing: requested quantity exceeds remaining balance")
	ErrConcurrentOverCommit = errors.New("billing: balance was consumed by a concurrent commit")
	ErrInvalidQuantity      = errors.New("billing: quantity must be greater than zero")
	ErrEmptyInvoice         = errors.New("billing: invoice has no line items")
	ErrProjectNotFound      = errors.New("billing: project not found")
)

// QuantityError describes one BOQ item whose requested quantity (summed over
// every line that references it) exceeds the remaining balance.
type QuantityError struct {
	ItemRef     string  `json:"item_ref"`
	ItemID      string  `json:"item_id"`
	Description string  `json:"description"`
	Requested   float64 `json:"requested"`
	Remaining   float64 `json:"remaining"`
	Lines       []int   `json:"lines"`
}

// CommitError is the rejection of a single invoice-creation attempt. Kind is
// one of the sentinels above and is what errors.Is matches against.
type CommitError struct {
	Kind      error
	Line      int // 1-based; 0 when the error is not tied to one line
	ItemRef   string
	ItemID    string
	Requested float64
	Remaining float64
	Items     []QuantityError
}

func (e *CommitError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d", e.Line)
		if e.ItemRef != "" {
			fmt.Fprintf(&b, ", ref %q", e.ItemRef)
		}
		b.WriteString(")")
	} else if e.ItemRef != "" {
		fmt.Fprintf(&b, " (ref %q)", e.ItemRef)
	}
	if errors.Is(e.Kind, ErrOverQuantity) || errors.Is(e.Kind, ErrConcurrentOverCommit) {
		fmt.Fprintf(&b, ": requested %s, remaining %s", FormatQty(e.Requested), FormatQty(e.Remaining))
	}
	if len(e.Items) > 1 {
		fmt.Fprintf(&b, " and %d more item(s)", len(e.Items)-1)
	}
	return b.String()
}

func (e *CommitError) Unwrap() error { return e.Kind }

// ErrorKind returns the wire name of a billing error, or "" for errors that
// do not originate from the billing core.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrAmbiguousReference):
		return "AmbiguousReference"
	case errors.Is(err, ErrOverQuantity):
		return "OverQuantity"
	case errors.Is(err, ErrConcurrentOverCommit):
		return "ConcurrentOverCommit"
	case errors.Is(err, ErrInvalidQuantity):
		return "InvalidQuantity"
	case errors.Is(err, ErrEmptyInvoice):
		return "EmptyInvoice"
	case errors.Is(err, ErrProjectNotFound):
		return "ProjectNotFound"
	}
	return ""
}

// IsRetryable reports whether the caller should re-run the whole
// validate+commit cycle against fresh balances.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentOverCommit)
}
