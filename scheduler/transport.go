package scheduler

// Position is the outbound observation of where playback currently is.
type Position struct {
	ActivePattern int
	CurrentStep   int
}

// transport is the mutable musical-time cursor. It is owned exclusively
// by the Scheduler and mutated only from the scheduler's single
// execution context (via Collect/step) or through the Transport Commands
// in commands.go.
type transport struct {
	playing   bool
	looping   bool
	recording bool

	activePattern int
	currentStep   int

	nextNoteTime        float64
	measureStartTime    float64
	firstMeasureTime    float64
	stepPrecision       int
	beatAmount          int
	scheduleAheadTime   float64

	metronomeEnabled       bool
	metronomeWasEnabled    bool // saved value while count-in forces it on, restored after
	countInEnabled         bool
	countInComplete        bool
}

func newTransport(stepPrecision, beatAmount int, scheduleAheadTime float64) *transport {
	return &transport{
		stepPrecision:     stepPrecision,
		beatAmount:        beatAmount,
		scheduleAheadTime: scheduleAheadTime,
		countInComplete:   true,
	}
}

// subdivision is the real-time duration of one step: ((60/tempo)*4)/stepPrecision.
func subdivision(tempo float64, stepPrecision int) float64 {
	if stepPrecision <= 0 {
		return 0
	}
	return ((60.0 / tempo) * 4.0) / float64(stepPrecision)
}

// patternDuration is the real-time duration of one whole pattern bar:
// (60/tempo) * beatAmount.
func patternDuration(tempo float64, beatAmount int) float64 {
	return (60.0 / tempo) * float64(beatAmount)
}
