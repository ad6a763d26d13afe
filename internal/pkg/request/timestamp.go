package request

import (
	"encoding/json"
	"fmt"
	"time"
)

// LocalLayout is the zone-less ISO-8601 form older clients send. Such values are read as UTC.
const LocalLayout = "2006-01-02T15:04:05"

// Timestamp is a JSON time accepting RFC 3339 or LocalLayout. It encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(LocalLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("timestamp %q is neither RFC 3339 nor %s", s, LocalLayout)
	}
	t.Time = parsed
	return nil
}
