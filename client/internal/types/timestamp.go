package types

import (
	"encoding/json"
	"time"
)

// The gateway serialises naive UTC datetimes ("2025-01-02T03:04:05.123456")
// without a zone suffix, which time.Time's RFC 3339 decoder rejects.
var naiveLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts both zoned and naive gateway timestamps.
func (l *AuditLog) UnmarshalJSON(b []byte) error {
	type alias AuditLog
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Timestamp == "" {
		l.Timestamp = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range naiveLayouts {
		ts, err := time.Parse(layout, aux.Timestamp)
		if err == nil {
			l.Timestamp = ts.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}
