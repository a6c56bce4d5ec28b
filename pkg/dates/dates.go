package dates

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Wire formats used by the legacy data files: calendar dates without a time
// component, timestamps without a timezone.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// DaysPerMonth is the engine-wide month approximation. Churn/retention
// windows, trend labels and plan durations all use 30-day months; switching
// to calendar months would change every derived number.
const DaysPerMonth = 30

// Date is a calendar date (no time component, no timezone). The zero value
// is the zero date and serializes as null.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar date.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseDate is for fixtures and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool    { return d.t.IsZero() }

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.t.AddDate(0, 0, n))
}

// AddMonths advances by n approximate months (n * 30 days).
func (d Date) AddMonths(n int) Date {
	return d.AddDays(n * DaysPerMonth)
}

// DaysUntil returns the whole number of days from d to other. Negative when
// other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// Covers reports whether d falls inside [start, end], bounds included.
func (d Date) Covers(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// MonthKey is the YYYY-MM grouping key used by revenue aggregation.
func (d Date) MonthKey() string {
	return d.t.Format("2006-01")
}

// MonthLabel is the human month label used by trend charts ("Jan 2006").
func (d Date) MonthLabel() string {
	return d.t.Format("Jan 2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(DateLayout))])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into dates.Date", src)
	}
}

// GormDataType keeps the column a plain SQL date.
func (Date) GormDataType() string { return "date" }

// DateTime is a timestamp in the legacy YYYY-MM-DDTHH:MM:SS form, no
// timezone.
type DateTime struct {
	t time.Time
}

func DateTimeOf(t time.Time) DateTime {
	return DateTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return DateTime{t: t}, nil
}

func MustParseDateTime(s string) DateTime {
	dt, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return dt
}

func (dt DateTime) Time() time.Time { return dt.t }
func (dt DateTime) IsZero() bool    { return dt.t.IsZero() }
func (dt DateTime) Date() Date      { return FromTime(dt.t) }

func (dt DateTime) String() string {
	return dt.t.Format(DateTimeLayout)
}

// MinutesUntil returns the whole number of minutes from dt to other.
func (dt DateTime) MinutesUntil(other DateTime) int {
	return int(other.t.Sub(dt.t) / time.Minute)
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + dt.String() + `"`), nil
}

func (dt *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*dt = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

func (dt DateTime) Value() (driver.Value, error) {
	if dt.IsZero() {
		return nil, nil
	}
	return dt.t, nil
}

func (dt *DateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*dt = DateTime{}
		return nil
	case time.Time:
		*dt = DateTimeOf(v)
		return nil
	case string:
		parsed, err := ParseDateTime(v)
		if err != nil {
			return err
		}
		*dt = parsed
		return nil
	case []byte:
		return dt.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into dates.DateTime", src)
	}
}

func (DateTime) GormDataType() string { return "timestamp" }
