package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// isoTime parses the looser ISO-8601 forms found in hand-written data, such as a bare
// date or a timestamp without zone. Zone-less values are read as UTC.
var isoTime = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats:  append([]string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}, now.TimeFormats...),
}

// ParseTimestamp accepts RFC 3339 and the other ISO-8601 forms above. An empty
// value is the zero time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return isoTime.Parse(raw)
}

func decodeTimestamp(data json.RawMessage) (time.Time, error) {
	if len(data) == 0 || string(data) == "null" {
		return time.Time{}, nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return time.Time{}, fmt.Errorf("timestamp must be a string: %w", err)
	}
	return ParseTimestamp(raw)
}
