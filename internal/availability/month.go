package availability

import (
	"time"

	"github.com/diewo77/decor-booking/internal/calendar"
)

// HolidayNamer optionally names holidays in the month view.
type HolidayNamer interface {
	Name(d calendar.Date) (string, bool)
}

// DayView is one cell of the month calendar.
type DayView struct {
	Resolution
	Bookable bool   `json:"bookable"`
	Weekend  bool   `json:"weekend"`
	Holiday  string `json:"holiday,omitempty"`
}

// MonthView is the calendar grid of one month, Sunday-first.
type MonthView struct {
	Year   int           `json:"year"`
	Month  int           `json:"month"`
	Today  calendar.Date `json:"today"`
	Weeks  [][7]*DayView `json:"weeks"`
	Loaded bool          `json:"snapshot_loaded"`
}

// Month builds the grid from the snapshot. It never blocks on I/O.
func (r *Resolver) Month(year int, month time.Month) MonthView {
	today := r.Today()
	lead := r.policy.Current().MinimumLeadDays
	namer, _ := r.holidays.(HolidayNamer)
	loaded, _ := r.Loaded()

	view := MonthView{Year: year, Month: int(month), Today: today, Loaded: loaded}
	for _, week := range calendar.MonthGrid(year, month) {
		var row [7]*DayView
		for i, d := range week {
			if d.IsZero() {
				continue
			}
			res := resolveWith(d, today, r.cached(d))
			cell := &DayView{
				Resolution: res,
				Bookable:   bookable(res, today, lead),
				Weekend:    d.IsWeekend(),
			}
			if namer != nil {
				cell.Holiday, _ = namer.Name(d)
			}
			row[i] = cell
		}
		view.Weeks = append(view.Weeks, row)
	}
	return view
}
