// Package quote builds a client's price estimate from catalog services,
// their options and the availability surcharge of the chosen event date.
//
// Amounts are kept at full float64 precision; rounding to cents happens only
// when a quote is summarized or finalized.
package quote

import (
	"errors"
	"math"
	"slices"

	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/models"
)

var (
	ErrEmptyQuote  = errors.New("empty_quote")
	ErrNoEventDate = errors.New("no_event_date")
)

// Catalog resolves services and options by id.
type Catalog interface {
	Service(id uint) (models.Service, bool)
	Option(id uint) (models.Option, bool)
}

// DateResolver resolves the event date without blocking.
type DateResolver interface {
	ResolveCached(d calendar.Date) availability.Resolution
	Bookable(res availability.Resolution) bool
}

// Line is one service in the quote. OptionIDs keeps selection order.
type Line struct {
	ServiceID uint    `json:"service_id"`
	Quantity  int     `json:"quantity"`
	OptionIDs []uint  `json:"option_ids"`
	Subtotal  float64 `json:"line_subtotal"`
}

func (l Line) clone() Line {
	l.OptionIDs = slices.Clone(l.OptionIDs)
	return l
}

// Quote is the working state of an estimate.
type Quote struct {
	Lines            []Line                   `json:"lines"`
	EventDate        calendar.Date            `json:"event_date"`
	Availability     *availability.Resolution `json:"availability,omitempty"`
	Bookable         bool                     `json:"bookable"`
	SurchargePercent int                      `json:"surcharge_percent"`
	Subtotal         float64                  `json:"subtotal"`
	SurchargeAmount  float64                  `json:"surcharge_amount"`
	Total            float64                  `json:"total"`
}

func (q Quote) clone() Quote {
	out := q
	out.Lines = make([]Line, len(q.Lines))
	for i, l := range q.Lines {
		out.Lines[i] = l.clone()
	}
	if q.Availability != nil {
		res := *q.Availability
		out.Availability = &res
	}
	return out
}

// IsEmpty reports a quote without lines.
func (q Quote) IsEmpty() bool { return len(q.Lines) == 0 }

func (q Quote) line(serviceID uint) int {
	for i, l := range q.Lines {
		if l.ServiceID == serviceID {
			return i
		}
	}
	return -1
}

// Recompute re-derives every line subtotal and the quote totals from cat.
// Lines whose service is gone or inactive are dropped, and so are option ids
// that no longer resolve to an option of the line's service. The event date
// surcharge already on q is kept.
func Recompute(q Quote, cat Catalog) Quote {
	out := q.clone()
	out.Lines = out.Lines[:0]
	var subtotal float64
	for _, l := range q.Lines {
		svc, ok := cat.Service(l.ServiceID)
		if !ok || !svc.Active || l.Quantity <= 0 {
			continue
		}
		unit := svc.BasePrice
		kept := make([]uint, 0, len(l.OptionIDs))
		for _, id := range l.OptionIDs {
			opt, ok := cat.Option(id)
			if !ok || opt.ServiceID != svc.ID {
				continue
			}
			unit += opt.Price
			kept = append(kept, id)
		}
		line := Line{ServiceID: l.ServiceID, Quantity: l.Quantity, OptionIDs: kept, Subtotal: unit * float64(l.Quantity)}
		subtotal += line.Subtotal
		out.Lines = append(out.Lines, line)
	}
	out.Subtotal = subtotal
	out.SurchargeAmount = subtotal * float64(out.SurchargePercent) / 100
	out.Total = out.Subtotal + out.SurchargeAmount
	return out
}

// RoundMoney rounds an amount to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
