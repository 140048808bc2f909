package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/troutline/stocking-events/internal/extract"
)

var (
	nonDigits  = regexp.MustCompile(`[^0-9]`)
	nonDecimal = regexp.MustCompile(`[^0-9.]`)
)

// FromRaw converts one extracted row into a canonical Event. Water, county,
// species, and date are mandatory; a row missing any of them after parsing
// is unusable and reports ok=false. Quantity and length are optional.
func FromRaw(r extract.RawRow, now time.Time) (*Event, bool) {
	water := strings.TrimSpace(r.Water)
	county := strings.ToUpper(strings.TrimSpace(r.County))
	species := strings.ToUpper(strings.TrimSpace(r.Species))
	date := NormalizeDate(r.Date)
	if water == "" || county == "" || species == "" || date == "" {
		return nil, false
	}

	evt := &Event{
		WaterName:   water,
		County:      county,
		Species:     species,
		DateStocked: date,
		FirstSeenAt: now.UTC(),
	}
	if qty, ok := parseQuantity(r.Quantity); ok {
		evt.Quantity = &qty
	}
	if length, ok := parseLength(r.Length); ok {
		evt.AvgLength = &length
	}
	evt.ID = GenerateID(evt.Fingerprint())
	return evt, true
}

// Normalize converts an extraction batch into canonical events, dropping
// unusable rows and any row whose ID duplicates an earlier row in the same
// batch (a source occasionally lists the same stocking twice on one page).
func Normalize(rows []extract.RawRow, now time.Time) []*Event {
	seen := make(map[string]bool, len(rows))
	events := make([]*Event, 0, len(rows))
	for _, r := range rows {
		evt, ok := FromRaw(r, now)
		if !ok || seen[evt.ID] {
			continue
		}
		seen[evt.ID] = true
		events = append(events, evt)
	}
	return events
}

// parseQuantity strips everything but digits ("1,200" and "1200 fish" both
// count) and parses the remainder as an integer.
func parseQuantity(s string) (int, bool) {
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseLength strips everything but digits and the decimal point (`10.5"`
// becomes 10.5) and parses the remainder as a float.
func parseLength(s string) (float64, bool) {
	cleaned := nonDecimal.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
