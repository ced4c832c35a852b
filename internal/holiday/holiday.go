// Package holiday answers whether a calendar date is a public holiday.
//
// Holidays are expanded per year into a static table from rule definitions
// (github.com/rickar/cal) plus fixed dates configured by the operator.
// Lookups are pure and never touch I/O.
package holiday

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Entry is one row of a year's holiday table.
type Entry struct {
	Date calendar.Date `json:"date"`
	Name string        `json:"name"`
}

// Calendar is a read-only holiday lookup.
type Calendar struct {
	rules []*cal.Holiday
	extra map[string]string // YYYY-MM-DD -> name

	mu    sync.Mutex
	years map[int]map[string]string
}

// DefaultRules is the federal set used when no other rules are given.
var DefaultRules = []*cal.Holiday{
	us.NewYear,
	us.MlkDay,
	us.MemorialDay,
	us.Juneteenth,
	us.IndependenceDay,
	us.LaborDay,
	us.ThanksgivingDay,
	us.ChristmasDay,
}

// New builds a calendar from holiday rules and fixed extra dates.
func New(rules []*cal.Holiday, extra []Entry) *Calendar {
	c := &Calendar{
		rules: rules,
		extra: make(map[string]string, len(extra)),
		years: make(map[int]map[string]string),
	}
	for _, e := range extra {
		if e.Date.IsZero() {
			continue
		}
		c.extra[e.Date.String()] = e.Name
	}
	return c
}

// Default builds a calendar with DefaultRules plus extra dates.
func Default(extra ...Entry) *Calendar {
	return New(DefaultRules, extra)
}

// IsHoliday reports whether d is in the holiday table.
func (c *Calendar) IsHoliday(d calendar.Date) bool {
	_, ok := c.Name(d)
	return ok
}

// Name returns the holiday name for d.
func (c *Calendar) Name(d calendar.Date) (string, bool) {
	if d.IsZero() {
		return "", false
	}
	name, ok := c.table(d.Year())[d.String()]
	return name, ok
}

// ForYear returns the holiday table of a year sorted by date.
func (c *Calendar) ForYear(year int) []Entry {
	tbl := c.table(year)
	out := make([]Entry, 0, len(tbl))
	for key, name := range tbl {
		out = append(out, Entry{Date: calendar.MustParse(key), Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (c *Calendar) table(year int) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tbl, ok := c.years[year]; ok {
		return tbl
	}
	tbl := make(map[string]string)
	for _, h := range c.rules {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		d := calendar.FromTime(actual)
		if d.Year() != year {
			continue
		}
		tbl[d.String()] = h.Name
	}
	for key, name := range c.extra {
		if strings.HasPrefix(key, fmt.Sprintf("%04d-", year)) {
			tbl[key] = name
		}
	}
	c.years[year] = tbl
	return tbl
}

// ParseExtra reads "YYYY-MM-DD" or "YYYY-MM-DD:Name" items.
func ParseExtra(items []string) ([]Entry, error) {
	out := make([]Entry, 0, len(items))
	for _, raw := range items {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		datePart, name, _ := strings.Cut(raw, ":")
		d, err := calendar.Parse(strings.TrimSpace(datePart))
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Holiday"
		}
		out = append(out, Entry{Date: d, Name: name})
	}
	return out, nil
}
