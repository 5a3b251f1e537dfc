package form

import (
	"fmt"
	"strings"
)

// State is the operation a form will perform next.
type State int

const (
	// StateCreate saves the record as a new one.
	StateCreate State = iota
	// StateEdit saves changes to an existing record.
	StateEdit
	// StateCopy saves a copy of an existing record as a new one.
	StateCopy
	// StateDelete deletes the record addressed by the identifier.
	StateDelete
	// StateDeleted is terminal: the record no longer exists.
	StateDeleted
)

var stateNames = map[State]string{
	StateCreate:  "create",
	StateEdit:    "edit",
	StateCopy:    "copy",
	StateDelete:  "delete",
	StateDeleted: "deleted",
}

// String returns the lowercase state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseState parses a state name, ignoring case.
func ParseState(name string) (State, error) {
	for state, stateName := range stateNames {
		if strings.EqualFold(stateName, strings.TrimSpace(name)) {
			return state, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// CanSave reports whether Save is allowed in s.
func (s State) CanSave() bool {
	return s == StateCreate || s == StateCopy || s == StateEdit
}

// CanDelete reports whether Delete is allowed in s.
func (s State) CanDelete() bool {
	return s == StateDelete
}

// creates reports whether saving in s creates a new record.
func (s State) creates() bool {
	return s == StateCreate || s == StateCopy
}
