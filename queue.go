package barbershop

import (
	"sync"
)

// BoundedQueue is the waiting room: a fixed number of chairs in FIFO order.
// Admission never blocks; only the consumer side waits.
type BoundedQueue struct {
	items    []*WorkItem
	capacity int
	size     int
	head     int
	tail     int
	seq      uint64
	mu       sync.Mutex
	notEmpty *sync.Cond
	closed   bool

	checkInvariants bool
	onResize        func(size int) // called under mu
}

// NewBoundedQueue creates a waiting room with capacity chairs.
// capacity must be positive.
func NewBoundedQueue(capacity int) *BoundedQueue {
	if capacity <= 0 {
		violate("capacity", "non-positive capacity %d", capacity)
	}
	q := &BoundedQueue{
		items:    make([]*WorkItem, capacity),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Offer seats the item if a chair is free.
// Returns ErrQueueFull or ErrQueueClosed without mutating anything otherwise.
func (q *BoundedQueue) Offer(item *WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.size == q.capacity {
		return ErrQueueFull
	}

	q.seq++
	item.Seq = q.seq
	q.items[q.tail] = item
	q.size++
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.resized()

	q.notEmpty.Signal()
	return nil
}

// TryEnqueue is Offer reduced to the admission answer.
func (q *BoundedQueue) TryEnqueue(item *WorkItem) bool {
	return q.Offer(item) == nil
}

// Dequeue removes the head item, blocking while the queue is empty.
// Items seated before Close are still handed out; ErrQueueClosed is returned
// only once the queue is both closed and empty.
func (q *BoundedQueue) Dequeue() (*WorkItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.closed && q.size == 0 {
		q.notEmpty.Wait() // re-checked on every wake
	}
	if q.size == 0 {
		return nil, ErrQueueClosed
	}
	return q.pop(), nil
}

// TryDequeue removes the head item without blocking.
func (q *BoundedQueue) TryDequeue() (*WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil, false
	}
	return q.pop(), true
}

func (q *BoundedQueue) pop() *WorkItem {
	ret := q.items[q.head]
	q.items[q.head] = nil
	q.size--
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.resized()
	return ret
}

func (q *BoundedQueue) resized() {
	if q.checkInvariants {
		q.verify()
	}
	if q.onResize != nil {
		q.onResize(q.size)
	}
}

func (q *BoundedQueue) verify() {
	if q.size < 0 || q.size > q.capacity {
		violate("queue-bounds", "size %d outside [0,%d]", q.size, q.capacity)
	}
	if want := (q.head + q.size) % q.capacity; want != q.tail {
		violate("queue-ring", "head %d + size %d does not reach tail %d", q.head, q.size, q.tail)
	}
	for i := 0; i < q.size; i++ {
		if q.items[(q.head+i)%q.capacity] == nil {
			violate("queue-ring", "empty slot inside occupied range at offset %d", i)
		}
	}
}

// Size is a snapshot; it may be stale as soon as it returns.
func (q *BoundedQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the number of chairs.
func (q *BoundedQueue) Cap() int {
	return q.capacity
}

func (q *BoundedQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops admissions and wakes a parked consumer. Safe to call twice.
func (q *BoundedQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
}
