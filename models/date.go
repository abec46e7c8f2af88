package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date format used by the external store and HTML date inputs.
	DateLayout = "2006-01-02"
	// TimestampLayout is the creation-timestamp format written to the external store.
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseDate parses a date string in the formats the external store produces.
// Accepted: YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS (with optional Z/fraction), RFC3339, and
// "YYYY-MM-DD HH:MM:SS". The time of day is discarded.
func ParseDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid date format: empty value")
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return CivilDate(t), nil
	}

	s = strings.TrimSuffix(s, "Z")
	for _, layout := range []string{DateLayout, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999", TimestampLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return CivilDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD")
}

// NormalizeDate applies the date-ingestion convention: a missing or unparseable
// value becomes today's date.
func NormalizeDate(dateStr string, today time.Time) time.Time {
	t, err := ParseDate(dateStr)
	if err != nil {
		return CivilDate(today)
	}
	return t
}

// CivilDate drops the time component, keeping the calendar date as seen in t's location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate wraps t as a calendar date.
func NewDate(t time.Time) Date {
	return Date{Time: CivilDate(t)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Timestamp is a wall-clock instant serialized as "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
}

func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(TimestampLayout)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.String() + `"`), nil
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		ts.Time = time.Time{}
		return nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// ParseTimestamp parses the timestamp formats seen in the external store.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.Parse(layout, strings.TrimSuffix(s, "Z")); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp format: %q", s)
}
