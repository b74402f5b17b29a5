package config

import (
	"encoding/json"
	"testing"
)

func TestDefaultIsUsable(t *testing.T) {
	c := Default()
	if c.Scheduler.StepPrecision <= 0 || c.Scheduler.InstrumentAmount <= 0 {
		t.Fatalf("expected a usable default config, got %+v", c.Scheduler)
	}
}

func TestInstrumentAmountFallsBackWhenUnset(t *testing.T) {
	c := &Config{} // as if unmarshaled from a config.json predating this field
	if got := c.InstrumentAmount(); got != Default().Scheduler.InstrumentAmount {
		t.Fatalf("expected fallback to default instrument amount, got %d", got)
	}

	c.Scheduler.InstrumentAmount = 8
	if got := c.InstrumentAmount(); got != 8 {
		t.Fatalf("expected configured value 8, got %d", got)
	}
}

func TestConfigRoundTripsThroughJSON(t *testing.T) {
	c := Default()
	c.Output.PortName = "IAC Driver Bus 1"

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Config
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Scheduler != c.Scheduler {
		t.Fatalf("scheduler config did not round-trip: got %+v, want %+v", got.Scheduler, c.Scheduler)
	}
	if got.Output.PortName != c.Output.PortName {
		t.Fatalf("output port did not round-trip: got %q, want %q", got.Output.PortName, c.Output.PortName)
	}
}
