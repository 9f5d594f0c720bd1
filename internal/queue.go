// Ready Queue: fixed-capacity, priority-ordered container of enabled tasks.
//
// Ported from the Betaflight scheduler's taskQueueArray (see
// _examples/original_source/src/main/scheduler/scheduler.c, queueAdd/
// queueRemove/queueFirst/queueNext). No linked list: entries are inserted
// rarely (task enable/disable), so an O(n) array shift is cheap and, unlike a
// linked list, touches no heap allocator on the hot path.

package flightsched_internal

// readyQueue is a fixed-capacity array sized taskCount+1: the trailing slot
// is a permanent nil sentinel so first()/next() walks terminate without a
// separate length check on the hot path (spec §3 "Ready Queue").
type readyQueue struct {
	tasks []*Task // len == taskCount+1, tasks[size] and beyond are nil
	size  int
	pos   int // walk cursor
}

func newReadyQueue(taskCount int) *readyQueue {
	return &readyQueue{tasks: make([]*Task, taskCount+1)}
}

// clear removes all entries.
func (q *readyQueue) clear() {
	for i := range q.tasks {
		q.tasks[i] = nil
	}
	q.size = 0
	q.pos = 0
}

// contains is a linear membership test.
func (q *readyQueue) contains(t *Task) bool {
	for i := 0; i < q.size; i++ {
		if q.tasks[i] == t {
			return true
		}
	}
	return false
}

// add inserts t in non-increasing static-priority order, ties preserving
// insertion order (invariant I4). Returns false if the queue is full or t is
// already present.
func (q *readyQueue) add(t *Task) bool {
	if q.size >= len(q.tasks)-1 || q.contains(t) {
		return false
	}
	for i := 0; i <= q.size; i++ {
		if q.tasks[i] == nil || q.tasks[i].staticPriority < t.staticPriority {
			copy(q.tasks[i+1:q.size+1], q.tasks[i:q.size])
			q.tasks[i] = t
			q.size++
			return true
		}
	}
	return false
}

// remove does a linear scan and shifts the tail left on a hit.
func (q *readyQueue) remove(t *Task) bool {
	for i := 0; i < q.size; i++ {
		if q.tasks[i] == t {
			copy(q.tasks[i:q.size-1], q.tasks[i+1:q.size])
			q.tasks[q.size-1] = nil
			q.size--
			return true
		}
	}
	return false
}

// first resets the walk cursor and returns the first entry, or nil if empty.
// Not reentrant: only the scheduler core walks the queue, once per tick.
func (q *readyQueue) first() *Task {
	q.pos = 0
	return q.tasks[0]
}

// next pre-increments the walk cursor. Returns nil at end of queue.
func (q *readyQueue) next() *Task {
	q.pos++
	return q.tasks[q.pos]
}
