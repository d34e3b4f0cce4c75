package core

import (
	"time"
)

// Timestamp is a UTC instant with microsecond precision, the finest
// resolution PostgreSQL stores, so a stored run reads back unchanged.
type Timestamp time.Time

// NewTimestamp converts t to UTC and truncates it to microseconds
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Truncate(time.Microsecond))
}

// Now returns the current timestamp
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// MarshalJSON writes RFC 3339 with fractional seconds
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = NewTimestamp(tm)
	return nil
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }
