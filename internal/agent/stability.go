package agent

// unknownLabel is the internal label for an unmatched face.  It streaks
// like any identity so a wall of strangers still triggers (one) denial.
const unknownLabel int64 = -1

// StabilityTracker suppresses single-frame flicker: a candidate only
// becomes actionable after it has been observed on enough consecutive
// frames.  Not safe for concurrent use; the loop owns it.
type StabilityTracker struct {
	need    int
	current int64
	streak  int
	fired   bool
}

// NewStabilityTracker returns a tracker requiring need consecutive
// observations (minimum 1).
func NewStabilityTracker(need int) *StabilityTracker {
	if need < 1 {
		need = 1
	}
	return &StabilityTracker{need: need}
}

// Observe feeds one candidate in and reports whether it just became
// stable.  A stable label fires exactly once per streak; the streak must
// break before the same label can fire again.
func (st *StabilityTracker) Observe(c Candidate) (stable bool) {
	label := unknownLabel
	if c.ID != nil {
		label = *c.ID
	}

	if label != st.current || st.streak == 0 {
		st.current = label
		st.streak = 1
		st.fired = false
	} else {
		st.streak++
	}

	if st.streak >= st.need && !st.fired {
		st.fired = true
		return true
	}
	return false
}

// Reset clears the streak, e.g. after the loop acts on a decision.
func (st *StabilityTracker) Reset() {
	st.streak = 0
	st.fired = false
}
