package scheduler

import (
	"sync"

	"trackplay/debug"
)

// Scheduler is the owned scheduler value spec.md §9 asks for in place of
// a process-wide singleton: one instance holds all transport state and
// voice queues and is driven by a single ClockDriver.
type Scheduler struct {
	mu sync.Mutex

	song *Song
	t    *transport

	voiceQueues []VoiceQueue
	channels    []Channel // bound to the active pattern's channels

	sink       AudioSink
	metronome  Metronome
	clock      ClockDriver

	// InstrumentFor maps an event's synthesis-slot instrument number to
	// whatever identifier the AudioSink expects. Defaults to identity;
	// overriding it is the scheduler's only hook into the instrument-
	// routing layer, which spec.md §1 places out of scope.
	InstrumentFor func(instrument int) int

	stop   chan struct{}
	done   chan struct{}
	update chan struct{}
}

// Config bundles the constants spec.md §6 names.
type Config struct {
	InstrumentAmount  int
	ScheduleAheadTime float64 // seconds, default 0.2
	StepPrecision     int     // default 64
	BeatAmount        int     // default 4
}

// DefaultConfig returns the constants spec.md §6 gives as defaults.
func DefaultConfig(instrumentAmount int) Config {
	return Config{
		InstrumentAmount:  instrumentAmount,
		ScheduleAheadTime: 0.2,
		StepPrecision:     64,
		BeatAmount:        4,
	}
}

// New creates a Scheduler over song, dispatching to sink and metronome
// and driven by clock. Voice queues are allocated once, per spec.md §3's
// lifecycle rule, and persist for the scheduler's lifetime.
func New(song *Song, sink AudioSink, metronome Metronome, clock ClockDriver, cfg Config) *Scheduler {
	s := &Scheduler{
		song:          song,
		t:             newTransport(cfg.StepPrecision, cfg.BeatAmount, cfg.ScheduleAheadTime),
		voiceQueues:   newVoiceQueues(cfg.InstrumentAmount),
		sink:          sink,
		metronome:     metronome,
		clock:         clock,
		InstrumentFor: func(i int) int { return i },
		update:        make(chan struct{}, 1),
	}
	if p := song.PatternAt(0); p != nil {
		s.channels = p.Channels
	}
	return s
}

// Run drains clock ticks and calls Collect on each, until Close is
// called. It is meant to be run on its own goroutine. Transport Commands
// called from other goroutines take the same lock Run holds while
// collecting, so all mutation of transport state and voice queues is
// serialized by s.mu.
func (s *Scheduler) Run() {
	s.mu.Lock()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-s.clock.Ticks():
			s.mu.Lock()
			if s.t.playing {
				s.collectLocked()
				s.notifyLocked()
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the Run loop. It does not touch the clock or voice queues;
// callers should Stop() the transport first if they want queues flushed.
func (s *Scheduler) Close() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-s.done
}

// collectLocked is the lookahead loop (spec.md §4.3.1). Caller holds s.mu.
func (s *Scheduler) collectLocked() {
	horizon := s.sink.CurrentTime() + s.t.scheduleAheadTime
	for s.t.nextNoteTime < horizon {
		sequenceEvents := !(s.t.recording && s.t.countInEnabled && !s.t.countInComplete)

		if sequenceEvents {
			s.scanChannelsLocked()
		}
		if s.t.metronomeEnabled && s.metronome != nil {
			s.metronome.Play(MetronomeSubdivision, s.t.currentStep, s.t.stepPrecision, s.t.nextNoteTime)
		}

		s.stepLocked()
	}
}

// scanChannelsLocked implements the per-tick channel scan in spec.md
// §4.3.1 step 2: it both fires newly-in-range events and clears the
// playing flag of events that have exited their range. The scheduler
// keeps no separate index into the pattern precisely so that this cheap
// O(channels*steps) scan can also absorb live edits to pattern content
// or step count.
func (s *Scheduler) scanChannelsLocked() {
	if s.channels == nil {
		debug.LogEvery(200, "collect", "active pattern %d has no channels bound", s.t.activePattern)
		return
	}

	compareTime := s.t.nextNoteTime - s.t.measureStartTime

	for ci, ch := range s.channels {
		for _, e := range ch {
			if e == nil || e.Recording {
				continue
			}
			if e.Seq.StartMeasure != s.t.activePattern {
				continue
			}
			inRange := compareTime >= e.Seq.StartMeasureOffset &&
				compareTime < e.Seq.StartMeasureOffset+e.Seq.Length
			if inRange {
				if !e.Seq.Playing {
					s.enqueueLocked(e, ci)
				}
			} else {
				e.Seq.Playing = false
			}
		}
	}
}

// enqueueLocked implements spec.md §4.3.2's enqueue.
func (s *Scheduler) enqueueLocked(e *Event, channelIndex int) {
	e.Seq.Playing = true
	e.Seq.MpLength = s.mpLengthLocked()

	s.sink.NoteOn(e, s.InstrumentFor(e.Instrument), s.t.nextNoteTime)

	isNoteOn := e.Action == ActionNoteOn
	if e.Action != ActionModParam {
		q := &s.voiceQueues[channelIndex%len(s.voiceQueues)]
		for head := q.HeadPeek(); head != nil; head = q.HeadPeek() {
			debug.Log("voice", "channel %d killing previous voice for new noteOn", channelIndex)
			s.dequeueLocked(head, s.t.nextNoteTime)
			q.RemoveHead()
		}
	}

	if isNoteOn {
		s.voiceQueues[channelIndex%len(s.voiceQueues)].Append(e)
	} else {
		s.sink.NoteOff(e, s.t.nextNoteTime+e.Seq.MpLength)
	}
}

// dequeueLocked implements spec.md §4.3.2's dequeue: it only emits the
// noteOff. Clearing Seq.Playing is the job of scanChannelsLocked's
// range-exit check or of an explicit reposition — never dequeue itself.
func (s *Scheduler) dequeueLocked(e *Event, atTime float64) {
	s.sink.NoteOff(e, atTime)
}

// mpLengthLocked computes patternDuration/pattern.steps for the active
// pattern, or 0 if the pattern is missing (spec.md §4.3.2 step 2).
func (s *Scheduler) mpLengthLocked() float64 {
	p := s.song.PatternAt(s.t.activePattern)
	if p == nil || p.Steps == 0 {
		return 0
	}
	return patternDuration(s.song.Tempo, s.t.beatAmount) / float64(p.Steps)
}

// stepLocked implements spec.md §4.3.3.
func (s *Scheduler) stepLocked() {
	sub := subdivision(s.song.Tempo, s.t.stepPrecision)
	s.t.nextNoteTime += sub
	s.t.currentStep++

	if s.t.currentStep != s.t.stepPrecision {
		return
	}

	s.t.currentStep = 0
	nextPattern := s.t.activePattern + 1
	maxPattern := len(s.song.Patterns) - 1
	debug.Log("step", "measure wrap: pattern %d -> %d (looping=%v)", s.t.activePattern, nextPattern, s.t.looping)

	if nextPattern > maxPattern {
		s.t.activePattern = 0
		if s.sink.IsRecording() && !s.t.looping {
			s.t.playing = false
			debug.Log("transport", "recording reached song end, stopping")
			return
		}
	} else if !s.t.looping {
		s.t.activePattern = nextPattern
	}
	// looping == true and nextPattern <= maxPattern: activePattern unchanged

	s.setPositionLocked(s.t.activePattern, s.t.nextNoteTime)

	if s.t.recording && s.t.countInEnabled && !s.t.countInComplete {
		s.t.countInComplete = true
		s.t.metronomeEnabled = s.t.metronomeWasEnabled
		s.setPositionLocked(0, s.t.nextNoteTime)
		s.t.firstMeasureTime = s.sink.CurrentTime()
		debug.Log("transport", "count-in complete, recording starts at pattern 0")
	}
}

// setPositionLocked implements spec.md §4.3.4.
func (s *Scheduler) setPositionLocked(pattern int, currentTime float64) {
	pattern = clamp(pattern, 0, len(s.song.Patterns)-1)
	if pattern != s.t.activePattern {
		s.t.currentStep = 0
	}

	s.t.activePattern = pattern
	s.t.nextNoteTime = currentTime
	s.t.measureStartTime = currentTime
	s.t.firstMeasureTime = currentTime - float64(pattern)*patternDuration(s.song.Tempo, s.t.beatAmount)

	if p := s.song.PatternAt(pattern); p != nil {
		s.channels = p.Channels
	} else {
		s.channels = nil
	}

	if pattern == 0 {
		s.flushVoiceQueuesLocked(currentTime, true)
	}
}

// flushVoiceQueuesLocked drains every voice queue. When emitNoteOff is
// true it emits noteOff for each drained event at currentTime and clears
// its playing flag (used by setPosition(0, ...)); when false it is a
// silent flush (used by Stop, whose sink is expected to self-silence).
func (s *Scheduler) flushVoiceQueuesLocked(currentTime float64, emitNoteOff bool) {
	for i := range s.voiceQueues {
		q := &s.voiceQueues[i]
		for head := q.HeadPeek(); head != nil; head = q.HeadPeek() {
			if emitNoteOff {
				s.sink.NoteOff(head, currentTime)
				head.Seq.Playing = false
			}
			q.RemoveHead()
		}
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Outbound observations (spec.md §6).

func (s *Scheduler) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.playing
}

func (s *Scheduler) IsLooping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.looping
}

func (s *Scheduler) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.recording
}

func (s *Scheduler) IsMetronomeEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.metronomeEnabled
}

func (s *Scheduler) AmountOfSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.song.PatternAt(s.t.activePattern); p != nil {
		return p.Steps
	}
	return 0
}

func (s *Scheduler) GetPosition() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Position{ActivePattern: s.t.activePattern, CurrentStep: s.t.currentStep}
}

// Updates returns a channel that receives a notification whenever the
// transport's observable state changes, for a UI to redraw from without
// polling on a fixed timer. Sends are non-blocking and coalesce, the
// same shape as the teacher's Manager.UpdateChan.
func (s *Scheduler) Updates() <-chan struct{} {
	return s.update
}

// notifyLocked pings Updates(); caller holds s.mu.
func (s *Scheduler) notifyLocked() {
	select {
	case s.update <- struct{}{}:
	default:
	}
}
