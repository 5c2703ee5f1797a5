package recurring

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Frequency is the cadence assigned to a recurring pattern.
type Frequency int

const (
	Weekly Frequency = iota
	Biweekly
	Monthly
	Quarterly
	Yearly
)

// Interval classification boundaries in days. Boundaries are left-inclusive:
// an average interval of exactly 10 days classifies as biweekly, exactly 20
// as monthly, and so on.
const (
	WeeklyMaxDays    = 10
	BiweeklyMaxDays  = 20
	MonthlyMaxDays   = 40
	QuarterlyMaxDays = 120
)

// Monthly-equivalent multipliers. 4.33 is the average number of weeks per
// month (52/12), 2.17 the average number of fortnights.
const (
	WeeksPerMonth   = 4.33
	BiweeksPerMonth = 2.17
)

var frequencyNames = map[Frequency]string{
	Weekly:    "weekly",
	Biweekly:  "biweekly",
	Monthly:   "monthly",
	Quarterly: "quarterly",
	Yearly:    "yearly",
}

// ClassifyInterval maps an average day interval to a Frequency.
func ClassifyInterval(avgDays float64) Frequency {
	switch {
	case avgDays < WeeklyMaxDays:
		return Weekly
	case avgDays < BiweeklyMaxDays:
		return Biweekly
	case avgDays < MonthlyMaxDays:
		return Monthly
	case avgDays < QuarterlyMaxDays:
		return Quarterly
	default:
		return Yearly
	}
}

// ParseFrequency parses the stored string form of a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	for f, name := range frequencyNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown frequency %q", s)
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}

// Next returns t advanced by exactly one period. Month-based cadences use
// calendar arithmetic, not fixed day counts.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Biweekly:
		return t.AddDate(0, 0, 14)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// MonthlyEquivalent converts an amount at this cadence to its one-month
// equivalent in minor units. The result is unrounded; callers round after
// summation, not per pattern.
func (f Frequency) MonthlyEquivalent(amount int64) float64 {
	a := float64(amount)
	switch f {
	case Weekly:
		return a * WeeksPerMonth
	case Biweekly:
		return a * BiweeksPerMonth
	case Monthly:
		return a
	case Quarterly:
		return a / 3
	case Yearly:
		return a / 12
	}
	return 0
}

func (f Frequency) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid frequency %s", data)
	}
	parsed, err := ParseFrequency(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Value implements driver.Valuer so frequencies are stored as text.
func (f Frequency) Value() (driver.Value, error) {
	name, ok := frequencyNames[f]
	if !ok {
		return nil, fmt.Errorf("invalid frequency %d", int(f))
	}
	return name, nil
}

// Scan implements sql.Scanner.
func (f *Frequency) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Frequency", src)
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
