package flowcore

import (
	"errors"
	"fmt"
)

// ErrNever is returned by resolve when the handle is dead: it was either
// a fire-and-forget (Never) request from the start, or a Once handle
// that has already fired.
var ErrNever = errors.New("flowcore: resolve on a handle that will never be resolved")

// ErrFinishedMany is returned by resolve when a Many handle's stream has
// already concluded (its consumer terminated, or it was explicitly
// closed).
var ErrFinishedMany = errors.New("flowcore: resolve on a finished streaming handle")

// NotFoundError is returned when resuming an EffectId that the registry
// has no live slot for — either it was never inserted, or it was
// already evicted.
type NotFoundError struct {
	ID EffectId
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("flowcore: effect id %d not found", uint32(e.ID))
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// BridgeErrorKind classifies which of the Bridge's three entry points a
// BridgeError came from.
type BridgeErrorKind string

const (
	// KindProcessEvent marks a malformed event payload.
	KindProcessEvent BridgeErrorKind = "ProcessEvent"
	// KindProcessResponse marks an unknown EffectId, a response payload
	// that failed to deserialize, or a downstream resolve error.
	KindProcessResponse BridgeErrorKind = "ProcessResponse"
	// KindView marks a failure while rendering the view.
	KindView BridgeErrorKind = "View"
)

// BridgeError is the error type returned by the three Bridge entry
// points. A nonzero BridgeError never corrupts registry state beyond
// what had already committed before the failure.
type BridgeError struct {
	Kind    BridgeErrorKind
	Message string
	Cause   error
}

func (e *BridgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("flowcore: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("flowcore: %s: %s", e.Kind, e.Message)
}

func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// NewProcessEventError wraps cause as a ProcessEvent-kind BridgeError.
func NewProcessEventError(cause error) *BridgeError {
	return &BridgeError{Kind: KindProcessEvent, Message: "malformed event payload", Cause: cause}
}

// NewProcessResponseError wraps cause as a ProcessResponse-kind
// BridgeError with message describing what went wrong.
func NewProcessResponseError(message string, cause error) *BridgeError {
	return &BridgeError{Kind: KindProcessResponse, Message: message, Cause: cause}
}

// NewViewError wraps cause as a View-kind BridgeError.
func NewViewError(cause error) *BridgeError {
	return &BridgeError{Kind: KindView, Message: "failed to render view", Cause: cause}
}

// PanicError wraps a recovered task panic. The task that panicked is
// evicted; other tasks belonging to the same Command are unaffected.
type PanicError struct {
	Recovered any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("flowcore: task panicked: %v", e.Recovered)
}
