package event

import (
	"testing"
	"time"

	"github.com/troutline/stocking-events/internal/extract"
)

func TestFromRawMandatoryFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*extract.RawRow)
		wantOK bool
	}{
		{"complete row", func(r *extract.RawRow) {}, true},
		{"empty water", func(r *extract.RawRow) { r.Water = "" }, false},
		{"whitespace water", func(r *extract.RawRow) { r.Water = "   " }, false},
		{"empty county", func(r *extract.RawRow) { r.County = "" }, false},
		{"empty species", func(r *extract.RawRow) { r.Species = "" }, false},
		{"unparseable date", func(r *extract.RawRow) { r.Date = "sometime in March" }, false},
		{"missing quantity is fine", func(r *extract.RawRow) { r.Quantity = "" }, true},
		{"missing length is fine", func(r *extract.RawRow) { r.Length = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := sampleRow()
			tt.mutate(&row)
			_, ok := FromRaw(row, time.Now())
			if ok != tt.wantOK {
				t.Errorf("FromRaw() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestFromRawFieldCoercion(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	row := extract.RawRow{
		Water:    "  Blue Lake  ",
		County:   "wasatch",
		Species:  "rainbow trout",
		Quantity: "1,200 fish",
		Length:   `10.5"`,
		Date:     "3/4/2026",
	}

	evt, ok := FromRaw(row, now)
	if !ok {
		t.Fatal("expected row to normalize")
	}

	if evt.WaterName != "Blue Lake" {
		t.Errorf("water = %q, want trimmed 'Blue Lake'", evt.WaterName)
	}
	if evt.County != "WASATCH" {
		t.Errorf("county = %q, want uppercased", evt.County)
	}
	if evt.Species != "RAINBOW TROUT" {
		t.Errorf("species = %q, want uppercased", evt.Species)
	}
	if evt.Quantity == nil || *evt.Quantity != 1200 {
		t.Errorf("quantity = %v, want 1200", evt.Quantity)
	}
	if evt.AvgLength == nil || *evt.AvgLength != 10.5 {
		t.Errorf("avg length = %v, want 10.5", evt.AvgLength)
	}
	if evt.DateStocked != "2026-03-04" {
		t.Errorf("date = %q, want 2026-03-04", evt.DateStocked)
	}
	if !evt.FirstSeenAt.Equal(now) {
		t.Errorf("first seen = %v, want %v", evt.FirstSeenAt, now)
	}
}

func TestFromRawInvalidNumerics(t *testing.T) {
	row := sampleRow()
	row.Quantity = "unknown"
	row.Length = "various"

	evt, ok := FromRaw(row, time.Now())
	if !ok {
		t.Fatal("expected row to normalize")
	}
	if evt.Quantity != nil {
		t.Errorf("quantity = %v, want absent", *evt.Quantity)
	}
	if evt.AvgLength != nil {
		t.Errorf("avg length = %v, want absent", *evt.AvgLength)
	}
}

func TestNormalizeBatchDedup(t *testing.T) {
	rows := []extract.RawRow{
		sampleRow(),
		sampleRow(), // same stocking listed twice on one page
		{Water: "Green Lake", County: "Summit", Species: "Trout", Date: "3/5/2026"},
		{Water: "", County: "Summit", Species: "Trout", Date: "3/5/2026"}, // dropped
	}

	events := Normalize(rows, time.Now())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].WaterName != "Blue Lake" || events[1].WaterName != "Green Lake" {
		t.Errorf("unexpected events: %+v", events)
	}
}
