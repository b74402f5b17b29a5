package scheduler_test

import (
	"testing"

	"trackplay/scheduler"
)

func TestVoiceQueueFIFO(t *testing.T) {
	var q scheduler.VoiceQueue
	if q.HeadPeek() != nil {
		t.Fatalf("expected empty queue to peek nil")
	}

	a := &scheduler.Event{Instrument: 1}
	b := &scheduler.Event{Instrument: 2}
	q.Append(a)
	q.Append(b)

	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}
	if head := q.HeadPeek(); head != a {
		t.Fatalf("expected head to be first-appended event")
	}

	q.RemoveHead()
	if head := q.HeadPeek(); head != b {
		t.Fatalf("expected head to advance to second event")
	}

	q.RemoveHead()
	if q.HeadPeek() != nil {
		t.Fatalf("expected queue empty after draining both entries")
	}

	// RemoveHead on an empty queue must not panic.
	q.RemoveHead()
}

func TestVoiceQueueFlush(t *testing.T) {
	var q scheduler.VoiceQueue
	q.Append(&scheduler.Event{})
	q.Append(&scheduler.Event{})
	q.Flush()
	if q.Len() != 0 {
		t.Fatalf("expected len 0 after Flush, got %d", q.Len())
	}
}
