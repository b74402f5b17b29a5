package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"trackplay/scheduler"
)

// Sink is scheduler.AudioSink backed by a real MIDI output port. It
// mirrors the teacher's OpenPort/send pattern (root sequencer.go and
// sequencer/manager.go's getSender) but implements the scheduler's
// AudioSink interface instead of driving a device queue directly.
type Sink struct {
	mu          sync.Mutex
	send        func(msg gomidi.Message) error
	instruments *InstrumentMap
	start       time.Time
	recording   bool

	// activeNotes remembers, per event, which MIDI note NoteOn resolved it
	// to, so NoteOff releases exactly that note even if InstrumentFor maps
	// the same event's instrument differently between the two calls.
	activeNotes map[*scheduler.Event]uint8
}

// NewSink creates a Sink with its own audio clock, started now. The clock
// only ever advances (time.Since never rewinds), matching spec.md §5's
// "the scheduler only reads it; it is never rewound."
func NewSink(instruments *InstrumentMap) *Sink {
	return &Sink{
		instruments: instruments,
		start:       time.Now(),
		activeNotes: make(map[*scheduler.Event]uint8),
	}
}

// Start returns the sink's audio-clock epoch, for a Metronome to share so
// its own delay math agrees with the sink's.
func (s *Sink) Start() time.Time {
	return s.start
}

// Open binds the sink to the named MIDI output port.
func (s *Sink) Open(portName string) error {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() != portName {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return fmt.Errorf("open midi out %q: %w", portName, err)
		}
		s.mu.Lock()
		s.send = send
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("midi out port %q not found", portName)
}

// OutPortNames lists available MIDI output port names, for a CLI to
// present a choice.
func OutPortNames() []string {
	var names []string
	var outs []drivers.Out = gomidi.GetOutPorts()
	for _, o := range outs {
		names = append(names, o.String())
	}
	return names
}

// SetRecording lets a demo/test flip the recording flag IsRecording
// reports back to the scheduler.
func (s *Sink) SetRecording(recording bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = recording
}

// CurrentTime returns seconds elapsed since the sink was created.
func (s *Sink) CurrentTime() float64 {
	return time.Since(s.start).Seconds()
}

// IsRecording reports whether the sink is currently recording its own
// output, per spec.md §6.
func (s *Sink) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// NoteOn schedules a MIDI note-on at atTime (sink clock seconds). The
// resolved note is cached against event so the matching NoteOff releases
// the same note even if instrument has been remapped in between.
func (s *Sink) NoteOn(event *scheduler.Event, instrument int, atTime float64) {
	note := s.instruments.Note(instrument)
	ch := s.instruments.Channel()

	s.mu.Lock()
	s.activeNotes[event] = note
	s.mu.Unlock()

	s.at(atTime, func() {
		s.dispatch(gomidi.NoteOn(ch, note, 100))
	})
}

// NoteOff schedules a MIDI note-off at atTime (sink clock seconds), using
// whatever note the event's NoteOn resolved to. If NoteOn was never seen
// for this event, it falls back to resolving event.Instrument directly.
func (s *Sink) NoteOff(event *scheduler.Event, atTime float64) {
	s.mu.Lock()
	note, ok := s.activeNotes[event]
	if ok {
		delete(s.activeNotes, event)
	}
	s.mu.Unlock()
	if !ok {
		note = s.instruments.Note(event.Instrument)
	}
	ch := s.instruments.Channel()

	s.at(atTime, func() {
		s.dispatch(gomidi.NoteOff(ch, note))
	})
}

// at runs fn once the sink clock reaches atTime, immediately if it has
// already passed. Mirrors sequencer/manager.go's midiOutputLoop wait-then-
// send pattern, but per-event instead of via a shared dispatch loop since
// the scheduler here calls NoteOn/NoteOff directly rather than through a
// polled queue.
func (s *Sink) at(atTime float64, fn func()) {
	delay := time.Duration(atTime*float64(time.Second)) - time.Since(s.start)
	if delay <= 0 {
		fn()
		return
	}
	time.AfterFunc(delay, fn)
}

func (s *Sink) dispatch(msg gomidi.Message) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send == nil {
		return
	}
	_ = send(msg)
}
