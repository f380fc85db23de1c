package audio

import "math"

// Interval is a silent span of a segment in milliseconds, end exclusive.
type Interval struct {
	StartMs int `json:"start_ms"`
	EndMs   int `json:"end_ms"`
}

func (iv Interval) DurationMs() int { return iv.EndMs - iv.StartMs }

// DBToAmplitude converts a dBFS level into a 16-bit amplitude.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20) * MaxAmplitude
}

// FindSilences scans seg in 1 ms steps and returns every span of at least
// minSilenceLenMs whose RMS stays at or below silenceThreshDB (dBFS).
// Overlapping or adjacent silent windows are merged into one interval.
func FindSilences(seg Segment, minSilenceLenMs int, silenceThreshDB float64) []Interval {
	if minSilenceLenMs <= 0 {
		minSilenceLenMs = 1
	}
	segLen := seg.DurationMs()
	if segLen < minSilenceLenMs {
		return nil
	}
	thresh := DBToAmplitude(silenceThreshDB)

	// prefix[i] holds the sum of squares of Samples[:i].
	prefix := make([]uint64, len(seg.Samples)+1)
	for i, v := range seg.Samples {
		sq := int64(v) * int64(v)
		prefix[i+1] = prefix[i] + uint64(sq)
	}

	var starts []int
	last := segLen - minSilenceLenMs
	for i := 0; i <= last; i++ {
		lo, hi := seg.sampleIndex(i), seg.sampleIndex(i+minSilenceLenMs)
		if windowRMS(prefix, lo, hi) <= thresh {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var out []Interval
	prev := starts[0]
	rangeStart := prev
	for _, s := range starts[1:] {
		continuous := s == prev+1
		hasGap := s > prev+minSilenceLenMs
		if !continuous && hasGap {
			out = append(out, Interval{StartMs: rangeStart, EndMs: prev + minSilenceLenMs})
			rangeStart = s
		}
		prev = s
	}
	out = append(out, Interval{StartMs: rangeStart, EndMs: prev + minSilenceLenMs})
	return out
}

// windowRMS is the floored RMS of Samples[lo:hi].
func windowRMS(prefix []uint64, lo, hi int) float64 {
	n := hi - lo
	if n <= 0 {
		return 0
	}
	mean := float64(prefix[hi]-prefix[lo]) / float64(n)
	return math.Floor(math.Sqrt(mean))
}
