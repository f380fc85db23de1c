package audio

type ThresholdStatus int

const (
	BelowThreshold ThresholdStatus = iota
	ReachedThreshold
)

func (s ThresholdStatus) String() string {
	if s == ReachedThreshold {
		return "reached_threshold"
	}
	return "below_threshold"
}

// DefaultThresholdBytes is one second of 16 kHz, 16-bit mono PCM.
const DefaultThresholdBytes = 16000 * 2

// Accumulator buffers the raw audio of a single session.
// It is owned by one goroutine and is not safe for concurrent use.
type Accumulator struct {
	threshold int
	buf       []byte
}

// NewAccumulator returns an accumulator that fires once the buffered length
// exceeds thresholdBytes. A threshold <= 0 never fires; use Flush instead.
func NewAccumulator(thresholdBytes int) *Accumulator {
	return &Accumulator{threshold: thresholdBytes}
}

// Append adds chunk to the buffer. When the buffer grows past the threshold the
// whole buffer is handed back and the accumulator starts over empty.
func (a *Accumulator) Append(chunk []byte) (ThresholdStatus, []byte) {
	a.buf = append(a.buf, chunk...)
	if a.threshold <= 0 || len(a.buf) <= a.threshold {
		return BelowThreshold, nil
	}
	return ReachedThreshold, a.Flush()
}

// Flush returns the buffered bytes and resets the buffer.
func (a *Accumulator) Flush() []byte {
	out := a.buf
	a.buf = nil
	return out
}

func (a *Accumulator) Len() int { return len(a.buf) }

func (a *Accumulator) Threshold() int { return a.threshold }
