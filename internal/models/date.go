package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day without a clock component, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to midnight UTC of the same calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected %s", raw, DateLayout)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
