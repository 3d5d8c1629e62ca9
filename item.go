package barbershop

import (
	"sync/atomic"
	"time"
)

// WorkItem is one customer. The arrival goroutine owns it until it is
// admitted, the queue owns it while waiting, and the barber owns it from
// dequeue until Done is fired.
type WorkItem struct {
	ID        int
	Seq       uint64 // admission order, assigned under the queue lock
	ArrivedAt time.Time

	seated     chan struct{}
	done       chan struct{}
	completed  atomic.Bool
	turn       uint64 // written by the barber before done is closed
	startedAt  time.Time
	finishedAt time.Time
}

func newWorkItem(id int) *WorkItem {
	return &WorkItem{
		ID:        id,
		ArrivedAt: time.Now(),
		seated:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Done is closed once the barber has finished with this item and nobody else.
func (w *WorkItem) Done() <-chan struct{} {
	return w.done
}

// seat is called by the arrival once its admission has been reported, so the
// barber never announces a haircut before the customer sat down.
func (w *WorkItem) seat() {
	close(w.seated)
}

// complete fires the one-shot notice. A second call means the item was
// serviced twice.
func (w *WorkItem) complete() {
	if !w.completed.CompareAndSwap(false, true) {
		violate("serviced-once", "customer %d completed twice", w.ID)
	}
	close(w.done)
}
