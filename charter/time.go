package charter

import "time"

// =============================================================================
// DATE - Day-granularity time point (booking ranges are date-only)
// =============================================================================

// Date is a calendar day in UTC. Arrival and departure carry no time-of-day:
// a booking ending the day another begins still counts as overlapping.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) IsZero() bool   { return d.Time.IsZero() }
func (d Date) String() string { return d.Time.Format("2006-01-02") }

// DaysBetween returns the number of whole days from `from` to `to`.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// Nights returns the night count of a stay, the usual charter billing unit.
func Nights(arrival, departure Date) int { return DaysBetween(arrival, departure) }
