package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Weekdays lists the keys of a WeeklyAvailability, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// TimeRange is an open interval on the wall clock, both ends in "HH:MM" 24h format.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UnmarshalJSON accepts both {"start":"09:00","end":"12:00"} and ["09:00","12:00"].
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []string
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("time range needs exactly 2 values, got %d", len(pair))
		}
		r.Start, r.End = pair[0], pair[1]
		return nil
	}

	type plain TimeRange
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = TimeRange(p)
	return nil
}

type DayAvailability struct {
	Available bool        `json:"available"`
	Intervals []TimeRange `json:"intervals"`
}

// WeeklyAvailability is a professional's recurring open hours keyed by
// lower-case weekday name. It is stored as a single JSONB column and is always
// overwritten wholesale.
type WeeklyAvailability map[string]DayAvailability

// Value implements the driver.Valuer interface
func (w WeeklyAvailability) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (w *WeeklyAvailability) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal WeeklyAvailability: unsupported type %T", value)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		*w = nil
		return nil
	}
	return json.Unmarshal(data, w)
}

// Validate checks the settings a professional submits. Stored data is never
// validated on read; the resolver skips what it cannot parse.
func (w WeeklyAvailability) Validate() error {
	for day, avail := range w {
		if !isWeekday(day) {
			return fmt.Errorf("unknown weekday %q", day)
		}
		for i, iv := range avail.Intervals {
			start, err := ParseClock(iv.Start)
			if err != nil {
				return fmt.Errorf("%s interval %d: start: %w", day, i, err)
			}
			end, err := ParseClock(iv.End)
			if err != nil {
				return fmt.Errorf("%s interval %d: end: %w", day, i, err)
			}
			if end <= start {
				return fmt.Errorf("%s interval %d: end %s must be after start %s", day, i, iv.End, iv.Start)
			}
		}
	}
	return nil
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, okH := twoDigits(s[0:2])
	m, okM := twoDigits(s[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return h*60 + m, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
