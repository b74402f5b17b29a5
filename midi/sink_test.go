package midi

import (
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"trackplay/scheduler"
)

func TestSinkNoteOnFiresImmediatelyWhenAtTimeHasPassed(t *testing.T) {
	var mu sync.Mutex
	var got []gomidi.Message

	s := NewSink(NewInstrumentMap(4, 60, 0))
	s.start = time.Now().Add(-time.Hour) // atTime=0 is far in the past
	s.send = func(msg gomidi.Message) error {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
		return nil
	}

	s.NoteOn(&scheduler.Event{Instrument: 0}, 0, 0)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected one dispatched message, got %d", len(got))
	}
}

func TestSinkDispatchNoOpWithoutSend(t *testing.T) {
	s := NewSink(NewInstrumentMap(4, 60, 0))
	s.NoteOff(&scheduler.Event{Instrument: 0}, 0) // must not panic with send unset
}

func TestSinkCurrentTimeAdvances(t *testing.T) {
	s := NewSink(NewInstrumentMap(1, 60, 0))
	first := s.CurrentTime()
	time.Sleep(time.Millisecond)
	if second := s.CurrentTime(); second <= first {
		t.Fatalf("expected CurrentTime to advance, got %v then %v", first, second)
	}
}

// TestSinkNoteOffUsesNoteOnsResolvedNote checks that NoteOff releases the
// note NoteOn actually attacked, even when the instrument id passed to
// NoteOn (post-InstrumentFor mapping) differs from event.Instrument.
func TestSinkNoteOffUsesNoteOnsResolvedNote(t *testing.T) {
	var mu sync.Mutex
	var got []gomidi.Message

	s := NewSink(NewInstrumentMap(4, 60, 0))
	s.start = time.Now().Add(-time.Hour)
	s.send = func(msg gomidi.Message) error {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
		return nil
	}

	event := &scheduler.Event{Instrument: 0}
	s.NoteOn(event, 2, 0) // mapped instrument 2, note = base+2
	s.NoteOff(event, 0)   // must release note base+2, not base+0

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected NoteOn and NoteOff dispatched, got %d messages", len(got))
	}

	var ch, onNote, vel uint8
	if !got[0].GetNoteOn(&ch, &onNote, &vel) {
		t.Fatalf("expected first message to be a NoteOn, got %v", got[0])
	}
	var offNote uint8
	if !got[1].GetNoteOff(&ch, &offNote, &vel) {
		t.Fatalf("expected second message to be a NoteOff, got %v", got[1])
	}
	if onNote != offNote {
		t.Fatalf("expected NoteOff to release note %d (from NoteOn), got %d", onNote, offNote)
	}
}

func TestSinkRecordingFlag(t *testing.T) {
	s := NewSink(NewInstrumentMap(1, 60, 0))
	if s.IsRecording() {
		t.Fatalf("expected new sink to start not recording")
	}
	s.SetRecording(true)
	if !s.IsRecording() {
		t.Fatalf("expected IsRecording true after SetRecording(true)")
	}
}
