package scheduler

import "testing"

func TestRemapPatternStepsExpand16To32(t *testing.T) {
	p := NewPattern(16, 1)
	events := make([]*Event, 16)
	for i := range events {
		events[i] = &Event{Instrument: i}
		p.Channels[0][i] = events[i]
	}

	remapPatternSteps(p, 32)

	if p.Steps != 32 {
		t.Fatalf("expected Steps=32, got %d", p.Steps)
	}
	ch := p.Channels[0]
	if len(ch) != 32 {
		t.Fatalf("expected channel length 32, got %d", len(ch))
	}
	for i, e := range events {
		if ch[i*2] != e {
			t.Fatalf("expected event %d to land at new index %d", i, i*2)
		}
	}
	for i := 1; i < 32; i += 2 {
		if ch[i] != nil {
			t.Fatalf("expected interleaved slot %d to stay empty, got %+v", i, ch[i])
		}
	}
}

func TestRemapPatternStepsDecimate32To16(t *testing.T) {
	p := NewPattern(32, 1)
	events := make([]*Event, 32)
	for i := range events {
		events[i] = &Event{Instrument: i}
		p.Channels[0][i] = events[i]
	}

	remapPatternSteps(p, 16)

	if p.Steps != 16 {
		t.Fatalf("expected Steps=16, got %d", p.Steps)
	}
	ch := p.Channels[0]
	for i := 0; i < 16; i++ {
		if ch[i] != events[i*2] {
			t.Fatalf("expected decimated slot %d to sample old index %d", i, i*2)
		}
	}
}

func TestRemapPatternStepsMutatesInPlace(t *testing.T) {
	p := NewPattern(16, 1)
	bound := p.Channels // simulates Scheduler.channels aliasing the active pattern

	remapPatternSteps(p, 32)

	if len(bound[0]) != 32 {
		t.Fatalf("expected an alias of pattern.Channels to observe the resize, got len %d", len(bound[0]))
	}
}

func TestRemapPatternStepsNoOpOnInvalidInput(t *testing.T) {
	remapPatternSteps(nil, 32) // must not panic

	p := NewPattern(16, 1)
	remapPatternSteps(p, 0)
	if p.Steps != 16 {
		t.Fatalf("expected Steps unchanged on newSteps<=0, got %d", p.Steps)
	}
}
