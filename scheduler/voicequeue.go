package scheduler

// VoiceQueue is a per-channel FIFO of currently-sounding noteOn events.
// Its length stays at 0 or 1: Scheduler.enqueueLocked drains the queue
// before appending a new noteOn.
//
// The queue is touched only by the scheduler's single execution context,
// so it needs no locking of its own.
type VoiceQueue struct {
	events []*Event
}

// Append enqueues an event at the tail.
func (q *VoiceQueue) Append(e *Event) {
	q.events = append(q.events, e)
}

// HeadPeek returns the head event, or nil if the queue is empty.
func (q *VoiceQueue) HeadPeek() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// RemoveHead drops the head entry. It is a no-op on an empty queue.
func (q *VoiceQueue) RemoveHead() {
	if len(q.events) == 0 {
		return
	}
	q.events = q.events[1:]
}

// Flush removes all entries without emitting any commands.
func (q *VoiceQueue) Flush() {
	q.events = nil
}

// Len reports the number of currently-queued voices.
func (q *VoiceQueue) Len() int {
	return len(q.events)
}

// newVoiceQueues allocates one VoiceQueue per instrument slot.
func newVoiceQueues(instrumentAmount int) []VoiceQueue {
	return make([]VoiceQueue, instrumentAmount)
}
