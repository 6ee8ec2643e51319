package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONTime wraps time.Time so we can control both
// JSON un/marshaling and SQL driver encoding. The dashboard and the
// order-link portal send timestamps in several shapes (RFC3339,
// datetime-local without zone, millisecond precision), so parsing is
// deliberately lenient.
type JSONTime time.Time

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*jt = JSONTime(time.Time{})
		return nil
	}
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*jt = JSONTime(t)
			return nil
		}
	}
	return fmt.Errorf("JSONTime.UnmarshalJSON: cannot parse %q", s)
}

// MarshalJSON always emits full RFC3339 ("...Z").
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(jt).UTC().Format(time.RFC3339))
}

// Value implements driver.Valuer so gorm can persist the column.
func (jt JSONTime) Value() (driver.Value, error) {
	return time.Time(jt), nil
}

// Scan implements sql.Scanner.
func (jt *JSONTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*jt = JSONTime(v)
		return nil
	case nil:
		*jt = JSONTime(time.Time{})
		return nil
	default:
		return fmt.Errorf("JSONTime.Scan: unsupported type %T", src)
	}
}

// Time returns the underlying time.Time.
func (jt JSONTime) Time() time.Time {
	return time.Time(jt)
}

// IsZero reports whether the wrapped time is the zero instant.
func (jt JSONTime) IsZero() bool {
	return time.Time(jt).IsZero()
}
