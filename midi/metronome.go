package midi

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ClickMetronome is scheduler.Metronome backed by a two-velocity MIDI
// click: an accent note on the downbeat of each subdivision-th step, a
// softer click otherwise.
type ClickMetronome struct {
	mu      sync.Mutex
	send    func(msg gomidi.Message) error
	start   time.Time
	channel uint8
	note    uint8
}

// NewClickMetronome creates a metronome sharing the given audio-clock
// start time with a Sink so their timestamps agree.
func NewClickMetronome(start time.Time, channel, note uint8) *ClickMetronome {
	return &ClickMetronome{start: start, channel: channel, note: note}
}

// Open binds the metronome to the named MIDI output port.
func (m *ClickMetronome) Open(portName string) error {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() != portName {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.send = send
		m.mu.Unlock()
		return nil
	}
	return nil
}

// Play implements scheduler.Metronome: an accent on every subdivision-th
// step, a normal click otherwise, self-terminating after a short blip.
func (m *ClickMetronome) Play(subdivision, currentStep, stepPrecision int, atTime float64) {
	velocity := uint8(70)
	if subdivision > 0 && currentStep%subdivision == 0 {
		velocity = 127
	}

	delay := time.Duration(atTime*float64(time.Second)) - time.Since(m.start)
	fire := func() {
		m.mu.Lock()
		send := m.send
		ch, note := m.channel, m.note
		m.mu.Unlock()
		if send == nil {
			return
		}
		_ = send(gomidi.NoteOn(ch, note, velocity))
		time.AfterFunc(20*time.Millisecond, func() { _ = send(gomidi.NoteOff(ch, note)) })
	}
	if delay <= 0 {
		fire()
		return
	}
	time.AfterFunc(delay, fire)
}
