package barbershop

import (
	"errors"
	"fmt"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")

	// ErrAdmissionRejected is matched by every error returned to an arrival
	// that was turned away at the door.
	ErrAdmissionRejected = errors.New("admission rejected")

	ErrNoChairs   = fmt.Errorf("%w: no chairs", ErrAdmissionRejected)
	ErrShopClosed = fmt.Errorf("%w: shop is closed", ErrAdmissionRejected)

	ErrAlreadyOpen = errors.New("shop already opened")
)

// InvariantError reports a broken internal invariant. It is never returned,
// only raised through panic: it means a locking bug, not a runtime condition.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s: %s", e.Invariant, e.Detail)
}

func violate(invariant, format string, args ...any) {
	panic(&InvariantError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}
