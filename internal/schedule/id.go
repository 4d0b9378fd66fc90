package schedule

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

const draftPrefix = "new-"

var ErrInvalidEventID = errors.New("invalid event id")

// EventID identifies an Event either by a client side draft id or by the id
// the store assigned on save. The zero value is invalid.
type EventID struct {
	draft bool
	value string
}

// DraftID wraps a local placeholder id for a record that was never saved.
func DraftID(local string) EventID {
	return EventID{draft: true, value: local}
}

// PersistedID wraps a store assigned id.
func PersistedID(id string) EventID {
	return EventID{value: id}
}

// ParseEventID reads the wire form produced by String.
func ParseEventID(s string) (EventID, error) {
	s = strings.TrimSpace(s)
	if local, ok := strings.CutPrefix(s, draftPrefix); ok {
		if local == "" {
			return EventID{}, ErrInvalidEventID
		}
		return DraftID(local), nil
	}
	if s == "" {
		return EventID{}, ErrInvalidEventID
	}
	return PersistedID(s), nil
}

func (id EventID) IsDraft() bool { return id.draft }

func (id EventID) IsZero() bool { return id.value == "" }

// Value is the bare id without the draft marker.
func (id EventID) Value() string { return id.value }

func (id EventID) String() string {
	if id.draft {
		return draftPrefix + id.value
	}
	return id.value
}

func (id EventID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *EventID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// a closed editor serialises its empty draft id as ""
	if s == "" {
		*id = EventID{}
		return nil
	}
	parsed, err := ParseEventID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
