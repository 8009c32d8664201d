package primitive

import (
	"sync"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/constants"
)

// queueState is a fixed-capacity ring buffer of fixed-width items
// (spec.md §4.4). The raw byte buffer is sized itemSize*capacity and
// allocated once at Create; items are copied by value in and out, mirroring
// the teacher's pooled byte-buffer allocation strategy (internal/queue/pool.go)
// generalized from power-of-two size buckets to an exact, fixed allocation
// sized for this queue's lifetime.
type queueState struct {
	mu           sync.Mutex
	notFull      *sync.Cond
	notEmpty     *sync.Cond
	buf          []byte
	itemSize     int
	capacity     int
	head         int
	tail         int
	count        int
	deleted      bool
	fullWaiters  int
	emptyWaiters int
}

// QueueRegistry owns the fixed-capacity pool of queues.
type QueueRegistry struct {
	pool *Pool[queueState]
}

// NewQueueRegistry constructs a registry sized per constants.MaxQueues.
func NewQueueRegistry() *QueueRegistry {
	return &QueueRegistry{pool: NewPool[queueState](constants.MaxQueues)}
}

// Create allocates a queue holding up to itemCount items of itemSize bytes
// each.
func (r *QueueRegistry) Create(itemSize, itemCount int) (abi.Handle, abi.Status) {
	if itemSize <= 0 || itemCount <= 0 {
		return abi.InvalidHandle, abi.InvalidParam
	}
	h, st, status := r.pool.Alloc(queueState{
		buf:      make([]byte, itemSize*itemCount),
		itemSize: itemSize,
		capacity: itemCount,
	})
	if !status.OK() {
		return abi.InvalidHandle, status
	}
	st.notFull = sync.NewCond(&st.mu)
	st.notEmpty = sync.NewCond(&st.mu)
	return h, abi.OK
}

// Delete releases the queue slot, waking and failing any pending send/receive
// callers first.
func (r *QueueRegistry) Delete(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	st.deleted = true
	st.notFull.Broadcast()
	st.notEmpty.Broadcast()
	st.mu.Unlock()

	for {
		st.mu.Lock()
		w := st.fullWaiters + st.emptyWaiters
		st.mu.Unlock()
		if w == 0 {
			break
		}
		time.Sleep(constants.PollGranularity)
	}

	return r.pool.Free(h)
}

func (st *queueState) slot(idx int) []byte {
	return st.buf[idx*st.itemSize : (idx+1)*st.itemSize]
}

// Send enqueues item at the tail, blocking while the queue is full per
// timeoutMs's class. A poll (timeoutMs=0) attempt against a full queue
// returns abi.Full, not abi.Timeout — spec.md §4.4 calls this distinction
// out explicitly.
func (r *QueueRegistry) Send(h abi.Handle, item []byte, timeoutMs uint32) abi.Status {
	return r.send(h, item, timeoutMs, false)
}

// SendFront prepends item at the head instead of appending at the tail,
// otherwise identical to Send.
func (r *QueueRegistry) SendFront(h abi.Handle, item []byte, timeoutMs uint32) abi.Status {
	return r.send(h, item, timeoutMs, true)
}

func (r *QueueRegistry) send(h abi.Handle, item []byte, timeoutMs uint32, front bool) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	if len(item) != st.itemSize {
		return abi.InvalidParam
	}

	deadline := backend.Monotonic().Add(time.Duration(timeoutMs) * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()

	for st.count == st.capacity {
		if st.deleted {
			return abi.InvalidState
		}
		switch timeoutMs {
		case constants.TimeoutPoll:
			return abi.Full
		case constants.TimeoutForever:
			st.fullWaiters++
			st.notFull.Wait()
			st.fullWaiters--
		default:
			if !backend.Monotonic().Before(deadline) {
				return abi.Timeout
			}
			st.fullWaiters++
			st.mu.Unlock()
			time.Sleep(constants.PollGranularity)
			st.mu.Lock()
			st.fullWaiters--
		}
	}

	if st.deleted {
		return abi.InvalidState
	}

	if front {
		st.head = (st.head + st.capacity - 1) % st.capacity
		copy(st.slot(st.head), item)
	} else {
		copy(st.slot(st.tail), item)
		st.tail = (st.tail + 1) % st.capacity
	}
	st.count++
	st.notEmpty.Signal()
	return abi.OK
}

// Receive dequeues the item at the head into dst, blocking while the queue
// is empty per timeoutMs's class.
func (r *QueueRegistry) Receive(h abi.Handle, dst []byte, timeoutMs uint32) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	if len(dst) != st.itemSize {
		return abi.InvalidParam
	}

	deadline := backend.Monotonic().Add(time.Duration(timeoutMs) * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()

	for st.count == 0 {
		if st.deleted {
			return abi.InvalidState
		}
		switch timeoutMs {
		case constants.TimeoutPoll:
			return abi.Empty
		case constants.TimeoutForever:
			st.emptyWaiters++
			st.notEmpty.Wait()
			st.emptyWaiters--
		default:
			if !backend.Monotonic().Before(deadline) {
				return abi.Timeout
			}
			st.emptyWaiters++
			st.mu.Unlock()
			time.Sleep(constants.PollGranularity)
			st.mu.Lock()
			st.emptyWaiters--
		}
	}

	if st.deleted {
		return abi.InvalidState
	}

	copy(dst, st.slot(st.head))
	st.head = (st.head + 1) % st.capacity
	st.count--
	st.notFull.Signal()
	return abi.OK
}

// Peek copies the head item into dst without removing it. Returns
// abi.Empty immediately if the queue has no items; Peek never blocks.
func (r *QueueRegistry) Peek(h abi.Handle, dst []byte) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	if len(dst) != st.itemSize {
		return abi.InvalidParam
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.count == 0 {
		return abi.Empty
	}
	copy(dst, st.slot(st.head))
	return abi.OK
}

// SendFromISR is the non-blocking ISR-context counterpart of Send: a full
// queue returns abi.Full immediately rather than waiting.
func (r *QueueRegistry) SendFromISR(h abi.Handle, item []byte) abi.Status {
	return r.Send(h, item, constants.TimeoutPoll)
}

// ReceiveFromISR is the non-blocking ISR-context counterpart of Receive.
func (r *QueueRegistry) ReceiveFromISR(h abi.Handle, dst []byte) abi.Status {
	return r.Receive(h, dst, constants.TimeoutPoll)
}

// Count reports the number of items currently queued.
func (r *QueueRegistry) Count(h abi.Handle) (int, abi.Status) {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return 0, status
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.count, abi.OK
}

// IsEmpty reports whether the queue currently holds no items.
func (r *QueueRegistry) IsEmpty(h abi.Handle) (bool, abi.Status) {
	n, status := r.Count(h)
	return n == 0, status
}

// IsFull reports whether the queue is at capacity.
func (r *QueueRegistry) IsFull(h abi.Handle) (bool, abi.Status) {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return false, status
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.count == st.capacity, abi.OK
}
