package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque record identifier. The backend issues numeric IDs but the
// client never does arithmetic on them, so they are carried as text and
// re-encoded as JSON numbers only when the text is a canonical integer.
type ID string

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler. Numbers and strings are accepted.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}
