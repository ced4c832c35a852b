package quote

import (
	"slices"

	"github.com/diewo77/decor-booking/internal/calendar"
)

// Builder owns one session's quote. It is not safe for concurrent use.
//
// Operations that reference unknown or inactive services, missing lines or
// foreign options leave the quote unchanged and report false.
type Builder struct {
	q     Quote
	cat   Catalog
	dates DateResolver
}

func NewBuilder(cat Catalog, dates DateResolver) *Builder {
	return &Builder{cat: cat, dates: dates}
}

// Quote returns a copy of the current quote.
func (b *Builder) Quote() Quote { return b.q.clone() }

func (b *Builder) IsEmpty() bool { return b.q.IsEmpty() }

// Submittable reports a non-empty quote with a bookable event date.
func (b *Builder) Submittable() bool {
	return !b.q.IsEmpty() && !b.q.EventDate.IsZero() && b.q.Bookable
}

func (b *Builder) recompute() {
	b.q = Recompute(b.q, b.cat)
}

// AddLine adds one unit of an active service, creating the line if needed.
func (b *Builder) AddLine(serviceID uint) bool {
	svc, ok := b.cat.Service(serviceID)
	if !ok || !svc.Active {
		return false
	}
	if i := b.q.line(serviceID); i >= 0 {
		b.q.Lines[i].Quantity++
	} else {
		b.q.Lines = append(b.q.Lines, Line{ServiceID: serviceID, Quantity: 1})
	}
	b.recompute()
	return true
}

// RemoveLine drops the line of a service.
func (b *Builder) RemoveLine(serviceID uint) bool {
	i := b.q.line(serviceID)
	if i < 0 {
		return false
	}
	b.q.Lines = slices.Delete(b.q.Lines, i, i+1)
	b.recompute()
	return true
}

// SetQuantity sets a line's quantity; n <= 0 removes the line.
func (b *Builder) SetQuantity(serviceID uint, n int) bool {
	i := b.q.line(serviceID)
	if i < 0 {
		return false
	}
	if n <= 0 {
		return b.RemoveLine(serviceID)
	}
	b.q.Lines[i].Quantity = n
	b.recompute()
	return true
}

// ToggleOption selects or deselects an option of the line's service.
func (b *Builder) ToggleOption(serviceID, optionID uint) bool {
	i := b.q.line(serviceID)
	if i < 0 {
		return false
	}
	opt, ok := b.cat.Option(optionID)
	if !ok || opt.ServiceID != serviceID {
		return false
	}
	ids := b.q.Lines[i].OptionIDs
	if j := slices.Index(ids, optionID); j >= 0 {
		b.q.Lines[i].OptionIDs = slices.Delete(slices.Clone(ids), j, j+1)
	} else {
		b.q.Lines[i].OptionIDs = append(slices.Clone(ids), optionID)
	}
	b.recompute()
	return true
}

// SetEventDate resolves d and applies its surcharge. A non-bookable date is
// accepted and flagged; submission is what refuses it.
func (b *Builder) SetEventDate(d calendar.Date) {
	if d.IsZero() {
		b.ClearEventDate()
		return
	}
	b.q.EventDate = d
	b.resolveDate()
	b.recompute()
}

// resolveDate refreshes the event date's availability and surcharge.
func (b *Builder) resolveDate() {
	res := b.dates.ResolveCached(b.q.EventDate)
	b.q.Availability = &res
	b.q.Bookable = b.dates.Bookable(res)
	b.q.SurchargePercent = res.SurchargePercent
}

// ClearEventDate removes the date and its surcharge.
func (b *Builder) ClearEventDate() {
	b.q.EventDate = calendar.Date{}
	b.q.Availability = nil
	b.q.Bookable = false
	b.q.SurchargePercent = 0
	b.recompute()
}

// RecomputeAll switches to cat, re-resolves the event date and re-derives
// all amounts.
func (b *Builder) RecomputeAll(cat Catalog) {
	if cat != nil {
		b.cat = cat
	}
	if !b.q.EventDate.IsZero() {
		b.resolveDate()
	}
	b.recompute()
}

// Reset clears lines and the event date.
func (b *Builder) Reset() {
	b.q = Quote{}
}

// LineState is the persisted form of a line.
type LineState struct {
	ServiceID uint   `json:"service_id"`
	Quantity  int    `json:"quantity"`
	OptionIDs []uint `json:"option_ids,omitempty"`
}

// State is what a session stores between requests: selections only, never prices.
type State struct {
	Lines     []LineState `json:"lines"`
	EventDate string      `json:"event_date,omitempty"`
}

// State captures the builder's selections.
func (b *Builder) State() State {
	st := State{Lines: make([]LineState, 0, len(b.q.Lines)), EventDate: b.q.EventDate.String()}
	for _, l := range b.q.Lines {
		st.Lines = append(st.Lines, LineState{ServiceID: l.ServiceID, Quantity: l.Quantity, OptionIDs: slices.Clone(l.OptionIDs)})
	}
	return st
}

// Restore rebuilds a builder from stored selections, pricing them against the
// current catalog and re-resolving the event date.
func Restore(st State, cat Catalog, dates DateResolver) *Builder {
	b := NewBuilder(cat, dates)
	for _, l := range st.Lines {
		if b.q.line(l.ServiceID) >= 0 {
			continue
		}
		b.q.Lines = append(b.q.Lines, Line{ServiceID: l.ServiceID, Quantity: l.Quantity, OptionIDs: slices.Clone(l.OptionIDs)})
	}
	if d, err := calendar.Parse(st.EventDate); err == nil {
		b.SetEventDate(d)
		return b
	}
	b.recompute()
	return b
}
