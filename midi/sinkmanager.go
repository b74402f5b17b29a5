package midi

import (
	"context"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// PortEventType identifies a MIDI output port connect/disconnect.
type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// PortEvent is emitted when a MIDI output port appears or disappears.
type PortEvent struct {
	Type PortEventType
	Name string
}

// SinkManager polls for MIDI output ports so a Sink can be (re)bound
// while the transport runs, without the scheduler ever blocking on
// device discovery. It is the teacher's controller DeviceManager
// (midi/manager.go) repointed from input controllers to output ports:
// this module has no GUI controller to discover, but an audio engine's
// MIDI port can still appear or disappear at runtime.
type SinkManager struct {
	mu       sync.RWMutex
	seen     map[string]bool
	events   chan PortEvent
	pollRate time.Duration
}

// NewSinkManager creates a manager that has not yet started polling.
func NewSinkManager() *SinkManager {
	return &SinkManager{
		seen:     make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns the channel port connect/disconnect events arrive on.
func (m *SinkManager) Events() <-chan PortEvent {
	return m.events
}

// Run polls for output ports until ctx is done (blocking - run in a goroutine).
func (m *SinkManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollRate)
	defer ticker.Stop()

	m.scan()
	for {
		select {
		case <-ctx.Done():
			close(m.events)
			return
		case <-ticker.C:
			m.scan()
		}
	}
}

func (m *SinkManager) scan() {
	type result struct {
		names []string
	}
	ch := make(chan result, 1)
	go func() {
		var names []string
		for _, p := range gomidi.GetOutPorts() {
			names = append(names, p.String())
		}
		ch <- result{names: names}
	}()

	var names []string
	select {
	case r := <-ch:
		names = r.names
	case <-time.After(3 * time.Second):
		// underlying MIDI subsystem is hung - skip this scan
		return
	}

	nowSeen := make(map[string]bool, len(names))
	for _, name := range names {
		nowSeen[name] = true

		m.mu.RLock()
		_, existed := m.seen[name]
		m.mu.RUnlock()
		if !existed {
			m.mu.Lock()
			m.seen[name] = true
			m.mu.Unlock()
			m.events <- PortEvent{Type: PortConnected, Name: name}
		}
	}

	m.mu.Lock()
	var gone []string
	for name := range m.seen {
		if !nowSeen[name] {
			gone = append(gone, name)
		}
	}
	for _, name := range gone {
		delete(m.seen, name)
	}
	m.mu.Unlock()

	for _, name := range gone {
		m.events <- PortEvent{Type: PortDisconnected, Name: name}
	}
}
