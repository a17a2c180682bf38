package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the wire and storage format of a business date
const DateLayout = "2006-01-02"

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight of that date
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders a business date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly keeps the calendar date of t as written in t's own location,
// expressed as UTC midnight. Business dates are carried in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BusinessDate is the calendar date of instant t as observed in loc
func BusinessDate(t time.Time, loc *time.Location) time.Time {
	return DateOnly(t.In(loc))
}

// DaysInRange counts calendar days in [from, to], inclusive of both ends
func DaysInRange(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours()/24) + 1
}

// LocationCache loads IANA zones once and falls back to a default zone for
// empty or unknown names
type LocationCache struct {
	fallback *time.Location
	zones    sync.Map // name -> *time.Location
}

// NewLocationCache creates a cache whose fallback is the named zone
func NewLocationCache(fallbackName string) (*LocationCache, error) {
	fallback, err := time.LoadLocation(fallbackName)
	if err != nil {
		return nil, fmt.Errorf("load fallback timezone %q: %w", fallbackName, err)
	}
	return &LocationCache{fallback: fallback}, nil
}

// Fallback returns the default zone
func (c *LocationCache) Fallback() *time.Location {
	return c.fallback
}

// Get returns the zone for name. The bool is false when the fallback was used.
func (c *LocationCache) Get(name string) (*time.Location, bool) {
	if name == "" {
		return c.fallback, false
	}
	if loc, ok := c.zones.Load(name); ok {
		return loc.(*time.Location), true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return c.fallback, false
	}
	c.zones.Store(name, loc)
	return loc, true
}
