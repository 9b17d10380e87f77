package notify

import (
	"sync"
)

// queue is a thread-safe ring buffer that doubles its capacity when it
// reaches 70% full, so enqueuing never blocks the transaction that
// produced the event.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Event
	head   int // read position
	tail   int // write position
	count  int
	cap    int
	closed bool

	enqueued int64
	dequeued int64
}

func newQueue(initialCapacity int) *queue {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &queue{
		buf: make([]Event, initialCapacity),
		cap: initialCapacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push adds an event, growing the buffer if at 70% capacity.
// Returns false if the queue is closed.
func (q *queue) push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	threshold := (q.cap * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if q.count+1 >= threshold {
		q.grow()
	}

	q.buf[q.tail] = ev
	q.tail = (q.tail + 1) % q.cap
	q.count++
	q.enqueued++

	q.cond.Signal()
	return true
}

// pop removes and returns an event, blocking until one is available or the
// queue is closed. After close, remaining events are still drained; the
// second return is false only when closed and empty.
func (q *queue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.count == 0 && q.closed {
		return Event{}, false
	}

	ev := q.buf[q.head]
	q.buf[q.head] = Event{} // clear reference for GC
	q.head = (q.head + 1) % q.cap
	q.count--
	q.dequeued++

	return ev, true
}

// close marks the queue closed and wakes all waiters.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// grow doubles the buffer capacity. Must be called with lock held.
func (q *queue) grow() {
	newCap := q.cap * 2
	newBuf := make([]Event, newCap)

	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.cap = newCap
}
