package dialogue

import (
	"errors"
	"fmt"
)

// ErrUnknownState is returned when a session is in a state the engine has no
// handler for.
var ErrUnknownState = errors.New("dialogue: unknown state")

// State is the position of a session in the scripted exchange.
type State int

const (
	Initial State = iota
	CollectingName
	CollectingEmail
	CollectingPhone
	Complete
)

var stateNames = map[State]string{
	Initial:         "INITIAL",
	CollectingName:  "COLLECTING_NAME",
	CollectingEmail: "COLLECTING_EMAIL",
	CollectingPhone: "COLLECTING_PHONE",
	Complete:        "COMPLETE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownState, string(text))
}

// Surface is the visitor-facing panel currently shown.
type Surface int

const (
	SurfaceChat Surface = iota
	SurfaceBooking
)

func (s Surface) String() string {
	if s == SurfaceBooking {
		return "booking"
	}
	return "chat"
}

func (s Surface) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Surface) UnmarshalText(text []byte) error {
	switch string(text) {
	case "chat", "":
		*s = SurfaceChat
	case "booking":
		*s = SurfaceBooking
	default:
		return fmt.Errorf("dialogue: unknown surface %q", string(text))
	}
	return nil
}
