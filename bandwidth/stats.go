package bandwidth

import "time"

// Timings holds the mean worker time of every trial, indexed [phase][trial].
// Disabled phases have nil rows.
type Timings [NumPhases][]time.Duration

// NewTimings returns a table with ntimes slots for each phase in phases.
func NewTimings(phases []Phase, ntimes int) Timings {
	var t Timings
	for _, p := range phases {
		t[p] = make([]time.Duration, ntimes)
	}
	return t
}

// PhaseStats summarises one phase over trials 1..NTimes-1.
type PhaseStats struct {
	Phase   Phase         `json:"phase"`
	Bytes   float64       `json:"bytes"`
	Min     time.Duration `json:"min"`
	Avg     time.Duration `json:"avg"`
	Max     time.Duration `json:"max"`
	RateMBs float64       `json:"rate_mbs"`
}

// Summarize derives per-phase statistics from t. arrayBytes is the size of
// one array's processed region; phase p moves p.Words() times that. Trial 0
// is skipped. Phases with fewer than two trials are omitted.
func Summarize(t Timings, arrayBytes int64) []PhaseStats {
	var out []PhaseStats
	for p, row := range t {
		if len(row) < 2 {
			continue
		}
		phase := Phase(p)
		st := PhaseStats{
			Phase: phase,
			Bytes: float64(phase.Words()) * float64(arrayBytes),
			Min:   row[1],
			Max:   row[1],
		}
		var sum time.Duration
		for _, d := range row[1:] {
			sum += d
			st.Min = min(st.Min, d)
			st.Max = max(st.Max, d)
		}
		st.Avg = sum / time.Duration(len(row)-1)
		if st.Min > 0 {
			st.RateMBs = 1e-6 * st.Bytes / st.Min.Seconds()
		}
		out = append(out, st)
	}
	return out
}

// mean returns the arithmetic mean of d, or zero for an empty slice.
func mean(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, x := range d {
		sum += x
	}
	return sum / time.Duration(len(d))
}
