package recorder

import (
	"errors"
	"fmt"
)

// State of the recording controller.
type State int

const (
	Idle State = iota
	Recording
	Paused
	// Stopping means the session is being finalized,
	// every command is rejected until it becomes Idle.
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	case Stopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Command int

const (
	CmdStart Command = iota
	CmdPause
	CmdResume
	CmdStop
)

func (c Command) String() string {
	switch c {
	case CmdStart:
		return "start"
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdStop:
		return "stop"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

func ParseCommand(s string) (Command, error) {
	for _, c := range []Command{CmdStart, CmdPause, CmdResume, CmdStop} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command [%v]", s)
}

var (
	ErrCaptureUnavailable = errors.New("capture unavailable")
	ErrEncoderFailure     = errors.New("encoder failure")
	ErrConfiguration      = errors.New("configuration error")
	// ErrNoFrames means that a failed session has not written anything,
	// so there is no output.
	ErrNoFrames = errors.New("no frames were recorded")

	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyRecording  = fmt.Errorf("%w: already recording", ErrInvalidTransition)
	ErrAlreadyPaused     = fmt.Errorf("%w: already paused", ErrInvalidTransition)
	ErrNotRecording      = fmt.Errorf("%w: not recording", ErrInvalidTransition)
	ErrNotPaused         = fmt.Errorf("%w: not paused", ErrInvalidTransition)
	ErrFinalizing        = fmt.Errorf("%w: recording is finalizing", ErrInvalidTransition)
)

// Transition returns the state the controller moves into
// after the command or an ErrInvalidTransition error.
// The stop command leads to Stopping; Idle comes after the finalization.
func Transition(s State, c Command) (State, error) {
	if s == Stopping {
		return s, ErrFinalizing
	}
	switch c {
	case CmdStart:
		if s == Idle {
			return Recording, nil
		}
		return s, ErrAlreadyRecording
	case CmdPause:
		switch s {
		case Recording:
			return Paused, nil
		case Paused:
			return s, ErrAlreadyPaused
		}
		return s, ErrNotRecording
	case CmdResume:
		switch s {
		case Paused:
			return Recording, nil
		case Recording:
			return s, ErrNotPaused
		}
		return s, ErrNotRecording
	case CmdStop:
		if s == Recording || s == Paused {
			return Stopping, nil
		}
		return s, ErrNotRecording
	}
	return s, fmt.Errorf("%w: unknown command %v", ErrInvalidTransition, c)
}
