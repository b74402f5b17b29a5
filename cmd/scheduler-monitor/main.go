package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"trackplay/config"
	"trackplay/debug"
	"trackplay/midi"
	"trackplay/scheduler"
	"trackplay/tui"
)

func main() {
	if err := debug.Enable(); err != nil {
		fmt.Printf("warning: debug logging disabled: %v\n", err)
	}
	defer debug.Disable()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	song := demoSong(cfg.Scheduler.DefaultTempo)

	instruments := midi.GMDrumInstrumentMap()
	sink := midi.NewSink(instruments)
	metronome := midi.NewClickMetronome(sink.Start(), instruments.Channel(), 76)

	if cfg.Output.AutoConnect {
		if port := chooseOutputPort(cfg.Output.PortName); port != "" {
			if err := sink.Open(port); err != nil {
				fmt.Printf("warning: could not open MIDI out %q: %v\n", port, err)
			} else if err := metronome.Open(port); err != nil {
				fmt.Printf("warning: could not open metronome on %q: %v\n", port, err)
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sinkMgr := midi.NewSinkManager()
	go sinkMgr.Run(ctx)

	clock := scheduler.NewTickerClock()
	schedCfg := scheduler.DefaultConfig(cfg.InstrumentAmount())
	schedCfg.StepPrecision = cfg.Scheduler.StepPrecision
	schedCfg.BeatAmount = cfg.Scheduler.BeatAmount
	schedCfg.ScheduleAheadTime = cfg.Scheduler.ScheduleAheadTime

	sched := scheduler.New(song, sink, metronome, clock, schedCfg)
	go sched.Run()
	defer sched.Close()

	fmt.Println("trackplay")
	fmt.Println("MIDI output is bound at startup only - ports connected later are not picked up")
	fmt.Println("")

	m := tui.NewMonitor(sched)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// chooseOutputPort returns preferred if it is currently available,
// otherwise the first output port found, or "" if none exist.
func chooseOutputPort(preferred string) string {
	names := midi.OutPortNames()
	if preferred != "" {
		for _, n := range names {
			if n == preferred {
				return preferred
			}
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// demoSong builds a two-pattern, four-channel drum sketch so the monitor
// has something to play without needing a song file format, which
// spec.md §1 places out of scope.
func demoSong(tempo float64) *scheduler.Song {
	if tempo <= 0 {
		tempo = 120
	}

	kick := scheduler.NewPattern(16, 4)
	place(kick, 0, 0, []int{0, 4, 8, 12})
	place(kick, 1, 1, []int{4, 12})
	place(kick, 2, 2, evens(16))
	kick.Channels[3][0] = &scheduler.Event{Action: scheduler.ActionModParam, Mp: &scheduler.ModParam{Module: 0, Value: 0.8, Glide: 0.5}}
	kick.Channels[3][8] = &scheduler.Event{Action: scheduler.ActionNoteOff, Instrument: 2}

	fill := scheduler.NewPattern(16, 4)
	place(fill, 3, 9, allSteps(16))

	patterns := []*scheduler.Pattern{kick, fill}
	for measure, p := range patterns {
		stepLen := ((60.0 / tempo) * 4.0) / float64(p.Steps)
		for _, ch := range p.Channels {
			for step, e := range ch {
				if e == nil {
					continue
				}
				e.Seq.StartMeasure = measure
				e.Seq.StartMeasureOffset = float64(step) * stepLen
				e.Seq.Length = stepLen
			}
		}
	}

	return &scheduler.Song{Tempo: tempo, Patterns: patterns}
}

func place(p *scheduler.Pattern, channel, instrument int, steps []int) {
	for _, step := range steps {
		p.Channels[channel][step] = &scheduler.Event{Action: scheduler.ActionNoteOn, Instrument: instrument}
	}
}

func evens(n int) []int {
	var steps []int
	for i := 0; i < n; i += 2 {
		steps = append(steps, i)
	}
	return steps
}

func allSteps(n int) []int {
	steps := make([]int, n)
	for i := range steps {
		steps[i] = i
	}
	return steps
}
