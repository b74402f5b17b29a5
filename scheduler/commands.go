package scheduler

import "trackplay/debug"

// Transport Commands (spec.md §4.5). Each is an idempotent mutator safe
// to call from outside the scheduler's own goroutine — they take the
// same lock Collect/step run under.

// SetCountInEnabled configures whether Start arms a one-bar metronome
// lead-in before recording actually begins (spec.md glossary: Count-in).
func (s *Scheduler) SetCountInEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.countInEnabled = enabled
}

// Start begins playback. If recording is on and count-in is enabled, it
// arms the count-in (silencing sequenced events until step() completes
// the first bar) and forces the metronome on for its duration.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t.playing {
		return
	}

	if s.t.recording && s.t.countInEnabled {
		s.t.countInComplete = false
		s.t.metronomeWasEnabled = s.t.metronomeEnabled
		s.t.metronomeEnabled = true
	}

	s.t.currentStep = 0
	s.t.playing = true
	now := s.sink.CurrentTime()
	s.t.nextNoteTime = now
	s.t.measureStartTime = now
	s.t.firstMeasureTime = now

	s.clock.Start(ClockIntervalMS(s.t.scheduleAheadTime))
	debug.Log("transport", "start recording=%v countIn=%v", s.t.recording, s.t.countInEnabled)
	s.notifyLocked()
}

// Stop halts playback, stops the Clock Driver, and flushes every voice
// queue without emitting noteOffs — the sink is expected to silence
// itself on transport stop (spec.md §4.5, §7 "stuck notes").
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.t.playing {
		return
	}
	s.t.playing = false
	s.clock.Stop()
	s.flushVoiceQueuesLocked(0, false)
	debug.Log("transport", "stop")
	s.notifyLocked()
}

// SetLooping is a pure flag write.
func (s *Scheduler) SetLooping(looping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.looping = looping
	s.notifyLocked()
}

// SetRecording is a pure flag write.
func (s *Scheduler) SetRecording(recording bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.recording = recording
	s.notifyLocked()
}

// SetMetronomeEnabled is a pure flag write.
func (s *Scheduler) SetMetronomeEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.metronomeEnabled = enabled
	s.notifyLocked()
}

// SetActivePattern commits a new position at the current audio time.
func (s *Scheduler) SetActivePattern(pattern int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPositionLocked(pattern, s.sink.CurrentTime())
	s.notifyLocked()
}

// SetPosition commits a new position at the given audio time (spec.md
// §4.3.4). Use SetPositionNow when the caller has no timestamp of its own
// and wants the sink's current time (or 0 with no sink) instead.
func (s *Scheduler) SetPosition(pattern int, currentTime float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPositionLocked(pattern, currentTime)
	s.notifyLocked()
}

// SetPositionNow commits a new position at the sink's current time, or 0
// if there is no sink — the "currentTime not supplied" branch of §4.3.4.
func (s *Scheduler) SetPositionNow(pattern int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := 0.0
	if s.sink != nil {
		now = s.sink.CurrentTime()
	}
	s.setPositionLocked(pattern, now)
	s.notifyLocked()
}

// SetCurrentStep sets the step cursor within the active pattern without
// otherwise disturbing position.
func (s *Scheduler) SetCurrentStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t.stepPrecision <= 0 {
		return
	}
	s.t.currentStep = clamp(step, 0, s.t.stepPrecision-1)
	s.notifyLocked()
}

// GotoPreviousPattern clamps to [0, len-1]; a no-op at the boundary.
func (s *Scheduler) GotoPreviousPattern() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t.activePattern == 0 {
		return
	}
	s.setPositionLocked(s.t.activePattern-1, s.currentTimeLocked())
	s.notifyLocked()
}

// GotoNextPattern clamps to [0, len-1]; a no-op at the boundary.
func (s *Scheduler) GotoNextPattern() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t.activePattern >= len(s.song.Patterns)-1 {
		return
	}
	s.setPositionLocked(s.t.activePattern+1, s.currentTimeLocked())
	s.notifyLocked()
}

func (s *Scheduler) currentTimeLocked() float64 {
	if s.sink == nil {
		return 0
	}
	return s.sink.CurrentTime()
}

// SetPatternSteps changes a pattern's step resolution in place, remapping
// existing content per spec.md §4.4. It replaces each channel slice with
// a freshly allocated one so that a concurrent Collect pass sees either
// the whole old shape or the whole new shape, never a partial resize.
func (s *Scheduler) SetPatternSteps(pattern *Pattern, newSteps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remapPatternSteps(pattern, newSteps)
	s.notifyLocked()
}
