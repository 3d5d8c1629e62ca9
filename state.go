package barbershop

import "sync/atomic"

// ShopState only moves forward: Open, Closing, Closed.
type ShopState int32

const (
	Open ShopState = iota
	Closing
	Closed
)

func (s ShopState) String() string {
	switch s {
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	}
	return "unknown"
}

type shopState struct {
	v atomic.Int32
}

func (s *shopState) load() ShopState {
	return ShopState(s.v.Load())
}

// advance moves from -> to and reports whether this caller made the move.
func (s *shopState) advance(from, to ShopState) bool {
	if to <= from {
		violate("monotonic-state", "transition %s -> %s", from, to)
	}
	return s.v.CompareAndSwap(int32(from), int32(to))
}

// BarberState is held by the service goroutine and only observed by others.
type BarberState int32

const (
	Idle BarberState = iota
	Draining
	Busy
	Terminated
)

func (s BarberState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case Busy:
		return "busy"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}
