package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.pilab.hu/clinic/domain"
)

// Session is the authenticated identity. Fields beyond id, fullName and role
// are kept verbatim in Profile and written back unchanged on persistence.
type Session struct {
	ID       domain.ID
	FullName string
	Role     domain.Role
	Profile  map[string]json.RawMessage

	// rawID is the id as received, so "42" stays a string and 42 a number.
	rawID json.RawMessage
}

var errIncomplete = errors.New("session object is incomplete")

// Decode parses a session object as returned by the backend or read from
// storage. Objects without an id or with an unknown role are rejected.
func Decode(data []byte) (*Session, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode session: %w", errIncomplete)
	}

	s := &Session{rawID: fields["id"]}
	if err := take(fields, "id", &s.ID); err != nil {
		return nil, err
	}
	if err := take(fields, "fullName", &s.FullName); err != nil {
		return nil, err
	}
	if err := take(fields, "role", &s.Role); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		s.Profile = fields
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func take(fields map[string]json.RawMessage, key string, dst interface{}) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode session field %q: %w", key, err)
	}
	return nil
}

func (s *Session) validate() error {
	if s.ID.IsZero() {
		return fmt.Errorf("%w: missing id", errIncomplete)
	}
	if !s.Role.Valid() {
		return fmt.Errorf("%w: role %q", errIncomplete, s.Role)
	}
	return nil
}

// MarshalJSON encodes the session as one flat object.
func (s Session) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Profile)+3)
	for k, v := range s.Profile {
		out[k] = v
	}
	out["id"] = s.ID
	if s.rawID != nil {
		var id domain.ID
		if err := json.Unmarshal(s.rawID, &id); err == nil && id == s.ID {
			out["id"] = s.rawID
		}
	}
	out["fullName"] = s.FullName
	out["role"] = s.Role
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler via Decode.
func (s *Session) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// Attribute returns a profile field as a string, or "" when absent or not a string.
func (s *Session) Attribute(name string) string {
	raw, ok := s.Profile[name]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.rawID = append(json.RawMessage(nil), s.rawID...)
	if s.Profile != nil {
		c.Profile = make(map[string]json.RawMessage, len(s.Profile))
		for k, v := range s.Profile {
			c.Profile[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}
