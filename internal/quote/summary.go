package quote

import (
	"fmt"

	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/calendar"
)

// PricedOption is a selected option with its catalog name and price.
type PricedOption struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// PricedLine is a line with names and prices resolved from the catalog.
type PricedLine struct {
	ServiceID   uint           `json:"service_id"`
	ServiceName string         `json:"service_name"`
	BasePrice   float64        `json:"base_price"`
	Quantity    int            `json:"quantity"`
	Options     []PricedOption `json:"options"`
	Subtotal    float64        `json:"line_subtotal"`
}

// Formatted holds display strings of the rounded amounts.
type Formatted struct {
	Subtotal        string `json:"subtotal"`
	SurchargeAmount string `json:"surcharge_amount"`
	Total           string `json:"total"`
}

// Summary is the presentation of a quote. Amounts are rounded to cents.
type Summary struct {
	Lines            []PricedLine             `json:"lines"`
	EventDate        calendar.Date            `json:"event_date"`
	Availability     *availability.Resolution `json:"availability,omitempty"`
	Bookable         bool                     `json:"bookable"`
	SurchargePercent int                      `json:"surcharge_percent"`
	Subtotal         float64                  `json:"subtotal"`
	SurchargeAmount  float64                  `json:"surcharge_amount"`
	Total            float64                  `json:"total"`
	Formatted        Formatted                `json:"formatted"`
	Submittable      bool                     `json:"submittable"`
}

// Finalized is the immutable snapshot handed to booking submission.
type Finalized struct {
	Lines            []PricedLine  `json:"lines"`
	EventDate        calendar.Date `json:"event_date"`
	SurchargePercent int           `json:"surcharge_percent"`
	Subtotal         float64       `json:"subtotal"`
	SurchargeAmount  float64       `json:"surcharge_amount"`
	Total            float64       `json:"total"`
}

// FormatMoney renders an amount with a currency symbol and two decimals.
func FormatMoney(symbol string, v float64) string {
	return fmt.Sprintf("%s%.2f", symbol, RoundMoney(v))
}

func (b *Builder) pricedLines() []PricedLine {
	out := make([]PricedLine, 0, len(b.q.Lines))
	for _, l := range b.q.Lines {
		svc, _ := b.cat.Service(l.ServiceID)
		pl := PricedLine{
			ServiceID:   l.ServiceID,
			ServiceName: svc.Name,
			BasePrice:   svc.BasePrice,
			Quantity:    l.Quantity,
			Options:     make([]PricedOption, 0, len(l.OptionIDs)),
			Subtotal:    RoundMoney(l.Subtotal),
		}
		for _, id := range l.OptionIDs {
			opt, _ := b.cat.Option(id)
			pl.Options = append(pl.Options, PricedOption{ID: opt.ID, Name: opt.Name, Price: opt.Price})
		}
		out = append(out, pl)
	}
	return out
}

// Summary presents the quote with rounded amounts.
func (b *Builder) Summary(currency string) Summary {
	q := b.Quote()
	return Summary{
		Lines:            b.pricedLines(),
		EventDate:        q.EventDate,
		Availability:     q.Availability,
		Bookable:         q.Bookable,
		SurchargePercent: q.SurchargePercent,
		Subtotal:         RoundMoney(q.Subtotal),
		SurchargeAmount:  RoundMoney(q.SurchargeAmount),
		Total:            RoundMoney(q.Total),
		Formatted: Formatted{
			Subtotal:        FormatMoney(currency, q.Subtotal),
			SurchargeAmount: FormatMoney(currency, q.SurchargeAmount),
			Total:           FormatMoney(currency, q.Total),
		},
		Submittable: b.Submittable(),
	}
}

// Finalize freezes the quote for submission. Bookability is re-checked by
// the submitter against the authoritative store, not here.
func (b *Builder) Finalize() (Finalized, error) {
	if b.q.IsEmpty() {
		return Finalized{}, ErrEmptyQuote
	}
	if b.q.EventDate.IsZero() {
		return Finalized{}, ErrNoEventDate
	}
	return Finalized{
		Lines:            b.pricedLines(),
		EventDate:        b.q.EventDate,
		SurchargePercent: b.q.SurchargePercent,
		Subtotal:         RoundMoney(b.q.Subtotal),
		SurchargeAmount:  RoundMoney(b.q.SurchargeAmount),
		Total:            RoundMoney(b.q.Total),
	}, nil
}
