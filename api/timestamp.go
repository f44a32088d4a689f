package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp accepts the shapes the backend uses for dates: RFC 3339
// strings (with or without zone), unix seconds or milliseconds, and
// Firestore {seconds, nanoseconds} objects. It marshals as RFC 3339, or
// null when zero.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
		return fmt.Errorf("timestamp: unrecognised format %q", s)

	case '{':
		var obj struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		switch {
		case obj.Seconds != nil:
			t.Time = time.Unix(*obj.Seconds, obj.Nanoseconds).UTC()
		case obj.USeconds != nil:
			t.Time = time.Unix(*obj.USeconds, obj.UNanoseconds).UTC()
		default:
			return fmt.Errorf("timestamp: object without seconds: %s", b)
		}
		return nil

	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		// Values this large are milliseconds
		if n > 1e12 {
			t.Time = time.UnixMilli(int64(n)).UTC()
			return nil
		}
		t.Time = time.Unix(int64(n), 0).UTC()
		return nil
	}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
