package scheduler

// remapPatternSteps implements spec.md §4.4: for each channel, replace the
// slot array of length M with a new one of length N, sampling content at
// the new resolution.
//
// Channels are replaced element-by-element (pattern.Channels[i] = ...)
// rather than by reassigning pattern.Channels itself, so that a Channel
// slice already bound elsewhere (Scheduler.channels, when this pattern is
// active) observes each channel's new shape through the same backing
// array — callers still need to hold the scheduler's lock while this
// runs so a Collect pass never sees a half-resized pattern.
func remapPatternSteps(pattern *Pattern, newSteps int) {
	if pattern == nil || newSteps <= 0 {
		return
	}
	oldSteps := pattern.Steps
	for i, old := range pattern.Channels {
		pattern.Channels[i] = remapChannel(old, oldSteps, newSteps)
	}
	pattern.Steps = newSteps
}

// remapChannel produces the length-N replacement for one channel.
func remapChannel(old Channel, oldSteps, newSteps int) Channel {
	next := NewChannel(newSteps)
	if oldSteps <= 0 {
		return next
	}

	if newSteps < oldSteps {
		// Decimating: k = M/N, new[i] = old[i*k].
		k := oldSteps / newSteps
		if k == 0 {
			k = 1
		}
		for i := 0; i < newSteps; i++ {
			src := i * k
			if src < len(old) {
				next[i] = old[src]
			}
		}
		return next
	}

	// Expanding (newSteps >= oldSteps): k = N/M, new[i*k] = old[i].
	k := newSteps / oldSteps
	if k == 0 {
		k = 1
	}
	for i := 0; i < oldSteps && i < len(old); i++ {
		dst := i * k
		if dst < newSteps {
			next[dst] = old[i]
		}
	}
	return next
}
