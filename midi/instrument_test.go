package midi

import "testing"

func TestNewInstrumentMapSequentialFromBase(t *testing.T) {
	m := NewInstrumentMap(4, 60, 1)
	for i, want := range []uint8{60, 61, 62, 63} {
		if got := m.Note(i); got != want {
			t.Fatalf("Note(%d)=%d, want %d", i, got, want)
		}
	}
	if m.Channel() != 1 {
		t.Fatalf("Channel()=%d, want 1", m.Channel())
	}
}

func TestNewInstrumentMapClampsAt127(t *testing.T) {
	m := NewInstrumentMap(4, 126, 0)
	if got := m.Note(3); got != 127 {
		t.Fatalf("Note(3)=%d, want clamped 127", got)
	}
}

func TestInstrumentMapFallbackOutOfRange(t *testing.T) {
	m := NewInstrumentMap(2, 60, 0)
	if got := m.Note(-1); got != 60 {
		t.Fatalf("Note(-1)=%d, want fallback 60", got)
	}
	if got := m.Note(5); got != 60 {
		t.Fatalf("Note(5)=%d, want fallback 60", got)
	}
}

func TestGMDrumInstrumentMapMatchesTable(t *testing.T) {
	m := GMDrumInstrumentMap()
	if m.Channel() != 9 {
		t.Fatalf("Channel()=%d, want 9", m.Channel())
	}
	if got := m.Note(0); got != 36 {
		t.Fatalf("Note(0)=%d, want kick 36", got)
	}
	if got := m.Note(9); got != 39 {
		t.Fatalf("Note(9)=%d, want clap 39", got)
	}
	if got := m.Note(99); got != 36 {
		t.Fatalf("Note(99)=%d, want fallback to kick", got)
	}
}
