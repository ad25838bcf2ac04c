package core

import (
	"time"
)

// sortableLayout is fixed width, so comparing two formatted values as strings
// orders them the same way as the instants they encode.
const sortableLayout = "2006-01-02T15:04:05.000000000Z"

// Timestamp is a UTC instant attached to runs.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp { return Timestamp(t.UTC()) }

// Now is the current instant in UTC.
func Now() Timestamp { return NewTimestamp(time.Now()) }

func (t Timestamp) Time() time.Time { return time.Time(t) }
func (t Timestamp) IsZero() bool    { return time.Time(t).IsZero() }

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}

// SortKey renders t for storage columns that are ordered lexically.
func (t Timestamp) SortKey() string {
	return t.Time().UTC().Format(sortableLayout)
}

// ParseSortKey reverses SortKey.
func ParseSortKey(s string) (Timestamp, error) {
	parsed, err := time.Parse(sortableLayout, s)
	if err != nil {
		return Timestamp{}, err
	}
	return NewTimestamp(parsed), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time().MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var parsed time.Time
	if err := parsed.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = NewTimestamp(parsed)
	return nil
}
