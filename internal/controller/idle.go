package controller

// IdleQueue holds work deferred until the current event handler has
// returned. The event loop drains it once per iteration, before the next
// input is processed.
type IdleQueue struct {
	fns []func()
}

// Push schedules fn for the next drain.
func (q *IdleQueue) Push(fn func()) {
	if fn != nil {
		q.fns = append(q.fns, fn)
	}
}

// Len reports the number of pending callbacks.
func (q *IdleQueue) Len() int {
	return len(q.fns)
}

// Drain runs the pending callbacks in FIFO order. Callbacks pushed while
// draining wait for the next drain. Returns the number of callbacks run.
func (q *IdleQueue) Drain() int {
	pending := q.fns
	q.fns = nil
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}
