package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque backend identifier. json-server style backends hand out either
// numbers or strings; ID remembers which one it was given and encodes back the
// same way, so records are exchanged verbatim.
type ID struct {
	value  string
	number bool
}

// NewID returns a string id, e.g. one typed by the user.
func NewID(value string) ID {
	return ID{value: value}
}

// NumberID returns an id that encodes as a JSON number. value must be a JSON number literal.
func NumberID(value string) ID {
	return ID{value: value, number: true}
}

// String returns the raw id.
func (id ID) String() string {
	return id.value
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return id.value == ""
}

// IsNumber reports whether the backend sent the id as a JSON number.
func (id ID) IsNumber() bool {
	return id.number
}

// Same compares ids by value, ignoring the JSON kind.
func (id ID) Same(other ID) bool {
	return id.value == other.value
}

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = NumberID(n.String())
	return nil
}

// MarshalJSON writes the id in the kind it was received in. The zero id is null.
func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case id.value == "":
		return []byte("null"), nil
	case id.number:
		return []byte(id.value), nil
	default:
		return json.Marshal(id.value)
	}
}

// assignedID is nil for the zero id, for use with omitempty.
func assignedID(id ID) *ID {
	if id.IsZero() {
		return nil
	}
	return &id
}
