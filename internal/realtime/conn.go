package realtime

import (
	"errors"
	"strings"
)

// EndAudio is the text frame that closes a coach utterance.
const EndAudio = "END_AUDIO"

type FrameType int

const (
	TextFrame FrameType = iota + 1
	BinaryFrame
)

type Frame struct {
	Type FrameType
	Data []byte
}

func (f Frame) Text() string { return strings.TrimSpace(string(f.Data)) }

// Conn is one bidirectional message stream. ReadFrame is only called from a
// single goroutine; WriteText must be safe to call concurrently with it.
type Conn interface {
	ReadFrame() (Frame, error)
	WriteText(text string) error
}

var (
	// ErrConnClosed is the normal end of a session.
	ErrConnClosed = errors.New("realtime: connection closed")
	// ErrMalformedControlMessage marks a missing or bad conversation id.
	ErrMalformedControlMessage = errors.New("realtime: malformed control message")
)

// pump reads frames off conn into out until the first read error, at which
// point it closes disconnected and then out. Closing stop releases a pump
// whose consumer has gone away.
func pump(conn Conn, out chan<- Frame, disconnected chan<- struct{}, stop <-chan struct{}) {
	defer close(out)
	defer close(disconnected)

	for {
		f, err := conn.ReadFrame()
		if err != nil {
			return
		}
		select {
		case out <- f:
		case <-stop:
			return
		}
	}
}
