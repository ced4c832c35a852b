package quote

import (
	"errors"
	"testing"

	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/catalog"
	"github.com/diewo77/decor-booking/internal/models"
)

// stubDates resolves from a fixed table and treats every Available date as bookable.
type stubDates map[string]availability.Resolution

func (s stubDates) ResolveCached(d calendar.Date) availability.Resolution {
	if res, ok := s[d.String()]; ok {
		res.Date = d
		return res
	}
	return availability.DefaultDeny(d)
}

func (s stubDates) Bookable(res availability.Resolution) bool { return res.IsAvailable() }

const (
	archID     uint = 1
	backdropID uint = 2
	retiredID  uint = 3
	ledID      uint = 10
	flowersID  uint = 11
	neonID     uint = 20
)

func testCatalog() catalog.Snapshot {
	return catalog.NewSnapshot([]models.Service{
		{ID: archID, Name: "Balloon arch", BasePrice: 150, Active: true, Options: []models.Option{
			{ID: ledID, ServiceID: archID, Name: "LED lights", Price: 85},
			{ID: flowersID, ServiceID: archID, Name: "Fresh flowers", Price: 40},
		}},
		{ID: backdropID, Name: "Backdrop", BasePrice: 99.99, Active: true, Options: []models.Option{
			{ID: neonID, ServiceID: backdropID, Name: "Neon sign", Price: 60},
		}},
		{ID: retiredID, Name: "Retired", BasePrice: 10, Active: false},
	})
}

func testDates() stubDates {
	return stubDates{
		"2030-07-06": {Status: models.StatusAvailable, SurchargePercent: 20, Overridden: true},
		"2030-07-02": {Status: models.StatusAvailable, SurchargePercent: 0, Overridden: true},
		"2030-07-03": {Status: models.StatusBlocked, Overridden: true},
	}
}

func TestLineSubtotal(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.AddLine(archID)
	if !b.ToggleOption(archID, ledID) {
		t.Fatalf("toggle should apply")
	}
	q := b.Quote()
	if len(q.Lines) != 1 || q.Lines[0].Quantity != 2 {
		t.Fatalf("expected one line with qty 2, got %+v", q.Lines)
	}
	if q.Lines[0].Subtotal != 470 || q.Subtotal != 470 {
		t.Fatalf("expected 470, got line=%v subtotal=%v", q.Lines[0].Subtotal, q.Subtotal)
	}
	if q.Total != 470 {
		t.Fatalf("no date means no surcharge, total=%v", q.Total)
	}
}

func TestSurchargeFromEventDate(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.SetQuantity(archID, 2)
	b.ToggleOption(archID, ledID)
	b.SetEventDate(calendar.MustParse("2030-07-06"))

	q := b.Quote()
	if q.SurchargePercent != 20 || q.SurchargeAmount != 94 || q.Total != 564 {
		t.Fatalf("expected 20%% / 94 / 564, got %d / %v / %v", q.SurchargePercent, q.SurchargeAmount, q.Total)
	}
	if !q.Bookable || !b.Submittable() {
		t.Fatalf("available date should be submittable")
	}

	// Changing the date re-resolves the surcharge.
	b.SetEventDate(calendar.MustParse("2030-07-02"))
	if q := b.Quote(); q.SurchargePercent != 0 || q.Total != 470 {
		t.Fatalf("expected surcharge reset, got %d / %v", q.SurchargePercent, q.Total)
	}
}

func TestNonBookableDateIsFlaggedNotRejected(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	for _, d := range []string{"2030-07-03", "2030-08-01"} {
		b.SetEventDate(calendar.MustParse(d))
		q := b.Quote()
		if q.EventDate.String() != d {
			t.Fatalf("date %s should be kept", d)
		}
		if q.Bookable || b.Submittable() {
			t.Fatalf("date %s should be flagged non-bookable", d)
		}
		if q.Availability == nil {
			t.Fatalf("resolution should be attached")
		}
	}
	if b.Quote().Availability.Note != availability.NotConfiguredNote {
		t.Fatalf("unconfigured date should carry the default-deny note")
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.AddLine(backdropID)
	if !b.SetQuantity(archID, 0) {
		t.Fatalf("set quantity should apply")
	}
	q := b.Quote()
	if len(q.Lines) != 1 || q.Lines[0].ServiceID != backdropID {
		t.Fatalf("arch line should be gone: %+v", q.Lines)
	}
	if q.Subtotal != 99.99 {
		t.Fatalf("totals not recomputed: %v", q.Subtotal)
	}
	if b.SetQuantity(archID, 3) {
		t.Fatalf("setting quantity of a missing line must be a no-op")
	}
}

func TestNoOpOperations(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	before := b.Quote()

	cases := []struct {
		name string
		op   func() bool
	}{
		{"unknown service", func() bool { return b.AddLine(99) }},
		{"inactive service", func() bool { return b.AddLine(retiredID) }},
		{"foreign option", func() bool { return b.ToggleOption(archID, neonID) }},
		{"unknown option", func() bool { return b.ToggleOption(archID, 999) }},
		{"option on missing line", func() bool { return b.ToggleOption(backdropID, neonID) }},
		{"remove missing line", func() bool { return b.RemoveLine(backdropID) }},
	}
	for _, c := range cases {
		if c.op() {
			t.Fatalf("%s: expected no-op", c.name)
		}
		after := b.Quote()
		if len(after.Lines) != len(before.Lines) || after.Total != before.Total || len(after.Lines[0].OptionIDs) != 0 {
			t.Fatalf("%s: quote changed: %+v", c.name, after)
		}
	}
}

func TestToggleOptionKeepsOrderAndDeselects(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.ToggleOption(archID, flowersID)
	b.ToggleOption(archID, ledID)
	ids := b.Quote().Lines[0].OptionIDs
	if len(ids) != 2 || ids[0] != flowersID || ids[1] != ledID {
		t.Fatalf("unexpected option order %v", ids)
	}
	b.ToggleOption(archID, flowersID)
	q := b.Quote()
	if len(q.Lines[0].OptionIDs) != 1 || q.Subtotal != 235 {
		t.Fatalf("deselect failed: %+v", q.Lines[0])
	}
}

func TestEmptyQuote(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.SetEventDate(calendar.MustParse("2030-07-06"))
	q := b.Quote()
	if q.Total != 0 || !b.IsEmpty() || b.Submittable() {
		t.Fatalf("empty quote must total 0 and not be submittable: %+v", q)
	}
	if _, err := b.Finalize(); !errors.Is(err, ErrEmptyQuote) {
		t.Fatalf("expected ErrEmptyQuote got %v", err)
	}
}

func TestResetClearsLinesAndDate(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.SetEventDate(calendar.MustParse("2030-07-06"))
	b.Reset()
	q := b.Quote()
	if !q.IsEmpty() || !q.EventDate.IsZero() || q.SurchargePercent != 0 || q.Total != 0 {
		t.Fatalf("reset left state behind: %+v", q)
	}
}

func TestRecomputeAllUsesCurrentCatalog(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.ToggleOption(archID, ledID)
	b.AddLine(backdropID)

	repriced := catalog.NewSnapshot([]models.Service{
		{ID: archID, Name: "Balloon arch", BasePrice: 200, Active: true, Options: []models.Option{
			{ID: flowersID, ServiceID: archID, Name: "Fresh flowers", Price: 40},
		}},
		{ID: backdropID, Name: "Backdrop", BasePrice: 50, Active: false},
	})
	b.RecomputeAll(repriced)
	q := b.Quote()
	if len(q.Lines) != 1 {
		t.Fatalf("inactive service line should be dropped: %+v", q.Lines)
	}
	if len(q.Lines[0].OptionIDs) != 0 || q.Subtotal != 200 {
		t.Fatalf("vanished option should be dropped and price updated: %+v", q)
	}
}

func TestRecomputeAllReresolvesEventDate(t *testing.T) {
	dates := testDates()
	b := NewBuilder(testCatalog(), dates)
	b.AddLine(archID)
	b.SetEventDate(calendar.MustParse("2030-07-06"))
	if q := b.Quote(); q.SurchargePercent != 20 || !q.Bookable || q.Total != 180 {
		t.Fatalf("unexpected quote before the date changed: %+v", q)
	}

	dates["2030-07-06"] = availability.Resolution{Status: models.StatusBlocked, SurchargePercent: 50, Overridden: true}
	b.RecomputeAll(testCatalog())

	q := b.Quote()
	if q.SurchargePercent != 50 || q.Bookable {
		t.Fatalf("date resolution should be refreshed, got surcharge=%d bookable=%v", q.SurchargePercent, q.Bookable)
	}
	if q.Availability == nil || q.Availability.Status != models.StatusBlocked {
		t.Fatalf("expected blocked availability, got %+v", q.Availability)
	}
	if q.Total != 225 {
		t.Fatalf("expected total 225, got %v", q.Total)
	}
	if b.Submittable() {
		t.Fatalf("blocked date must not be submittable")
	}
}

func TestRecomputeIsPure(t *testing.T) {
	in := Quote{Lines: []Line{{ServiceID: archID, Quantity: 2, OptionIDs: []uint{ledID}}}, SurchargePercent: 20}
	out := Recompute(in, testCatalog())
	if in.Subtotal != 0 || in.Lines[0].Subtotal != 0 {
		t.Fatalf("input quote was mutated: %+v", in)
	}
	if out.Total != 564 {
		t.Fatalf("expected 564 got %v", out.Total)
	}
}

func TestStateRoundTrip(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	b.AddLine(archID)
	b.ToggleOption(archID, ledID)
	b.SetEventDate(calendar.MustParse("2030-07-06"))

	restored := Restore(b.State(), testCatalog(), testDates())
	if got, want := restored.Quote().Total, b.Quote().Total; got != want {
		t.Fatalf("restored total %v want %v", got, want)
	}
	if restored.Quote().EventDate.String() != "2030-07-06" {
		t.Fatalf("event date not restored")
	}
}

func TestSummaryRoundsOnlyAtPresentation(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(backdropID)
	b.SetQuantity(backdropID, 3)
	b.SetEventDate(calendar.MustParse("2030-07-06"))

	q := b.Quote()
	// 99.99 * 3 = 299.97; 20% = 59.994
	if diff := q.SurchargeAmount - 59.994; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("internal surcharge should keep precision, got %v", q.SurchargeAmount)
	}
	s := b.Summary("$")
	if s.SurchargeAmount != 59.99 || s.Total != 359.96 {
		t.Fatalf("unexpected rounded amounts %v / %v", s.SurchargeAmount, s.Total)
	}
	if s.Formatted.Total != "$359.96" {
		t.Fatalf("unexpected formatted total %q", s.Formatted.Total)
	}
	if len(s.Lines) != 1 || s.Lines[0].ServiceName != "Backdrop" {
		t.Fatalf("summary lines missing names: %+v", s.Lines)
	}
}

func TestFinalize(t *testing.T) {
	b := NewBuilder(testCatalog(), testDates())
	b.AddLine(archID)
	if _, err := b.Finalize(); !errors.Is(err, ErrNoEventDate) {
		t.Fatalf("expected ErrNoEventDate got %v", err)
	}
	b.ToggleOption(archID, ledID)
	b.SetEventDate(calendar.MustParse("2030-07-06"))
	f, err := b.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if f.Total != 282 || f.SurchargePercent != 20 {
		t.Fatalf("unexpected finalized amounts %+v", f)
	}
	line := f.Lines[0]
	if line.ServiceName != "Balloon arch" || line.BasePrice != 150 || len(line.Options) != 1 || line.Options[0].Name != "LED lights" {
		t.Fatalf("names and prices not baked in: %+v", line)
	}

	// Later edits do not leak into the finalized snapshot.
	b.AddLine(backdropID)
	if len(f.Lines) != 1 {
		t.Fatalf("finalized snapshot changed")
	}
}
