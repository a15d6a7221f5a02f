package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque server identifier. The backend emits numeric ids; they are
// kept as strings so the client never does arithmetic on them. The zero ID
// means "none", which for folder references is the root.
type ID string

// ParseID trims s and returns it as an ID.
func ParseID(s string) ID {
	return ID(strings.TrimSpace(s))
}

func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

func (id ID) numeric() bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case id == "":
		return []byte("null"), nil
	case id.numeric():
		return []byte(id), nil
	default:
		return json.Marshal(string(id))
	}
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ParseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}
