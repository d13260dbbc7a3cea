package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the only accepted wire form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time of day and no time zone.
//
// WHY NOT time.Time?
// A time.Time always carries a clock and a location. Encoding one as JSON
// gives "1984-06-06T00:00:00Z", and a zone shift can move the day. Keeping
// the three components explicitly makes the YYYY-MM-DD round trip exact.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses s strictly as YYYY-MM-DD.
//
// time.Parse already requires the zero-padded widths for "01" and "02",
// and rejects days that don't exist (1984-02-30). The final comparison
// rejects anything time.Parse tolerates but we don't, so the accepted
// input is exactly what String() produces.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date %q must be in YYYY-MM-DD form", s)
	}
	d := Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	if d.String() != s {
		return Date{}, fmt.Errorf("date %q must be in YYYY-MM-DD form", s)
	}
	return d, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a YYYY-MM-DD string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
