package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is the one time representation stored records use. Older
// records may hold a plain ISO string, a provider wrapper
// ({"seconds":..,"nanoseconds":..}) or an extended-JSON wrapper
// ({"$date":..}); all of them decode into the same instant and are always
// re-encoded as RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalised to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// TimestampPtr returns a pointer to a new Timestamp for optional fields.
func TimestampPtr(t time.Time) *Timestamp {
	ts := NewTimestamp(t)
	return &ts
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.Parse(s)
	case '{':
		return t.unmarshalWrapper(data)
	default:
		// Bare number: milliseconds since the epoch.
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("cannot parse timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
}

func (t *Timestamp) unmarshalWrapper(data []byte) error {
	var w struct {
		Seconds     *int64          `json:"seconds"`
		Nanoseconds int64           `json:"nanoseconds"`
		Date        json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("cannot parse timestamp %s: %w", data, err)
	}
	if w.Seconds != nil {
		t.Time = time.Unix(*w.Seconds, w.Nanoseconds).UTC()
		return nil
	}
	if len(w.Date) > 0 {
		return t.UnmarshalJSON(w.Date)
	}
	return fmt.Errorf("cannot parse timestamp %s: unknown shape", data)
}

// Parse parses an ISO string, trying RFC 3339 first, then date-only.
func (t *Timestamp) Parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err2 := time.Parse(time.DateOnly, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
}
