package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format of calendar dates (date of birth).
	DateLayout = "2006-01-02"
	// DateTimeLayout is the wire format of zone-less timestamps (visit date).
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a calendar date without a time zone.
type Date struct {
	time.Time
}

// ParseDate parses YYYY-MM-DD. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if strings.TrimSpace(s) == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler. The zero Date encodes as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// MarshalYAML renders the date the way it is displayed.
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateTime is a local timestamp without a zone, as the backend stores visit dates.
type DateTime struct {
	time.Time
}

// ParseDateTime accepts YYYY-MM-DDTHH:MM[:SS] and RFC 3339 timestamps.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{t}, nil
		}
	}
	_, err := time.Parse(DateTimeLayout, s)
	return DateTime{}, err
}

func (d DateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02 15:04")
}

// MarshalJSON implements json.Marshaler.
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateTimeLayout))
}

// MarshalYAML renders the timestamp the way it is displayed.
func (d DateTime) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
