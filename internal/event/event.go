package event

import (
	"crypto/sha1"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event represents one recorded fish stocking as published by a state
// agency source. Events are immutable once created; a corrected report
// produces a new event with a new ID rather than an update.
type Event struct {
	ID          string    `json:"id"`
	WaterName   string    `json:"water_name"`
	County      string    `json:"county"`
	Species     string    `json:"species"`
	Quantity    *int      `json:"quantity,omitempty"`
	AvgLength   *float64  `json:"avg_length,omitempty"`
	DateStocked string    `json:"date_stocked"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// fingerprintDelim separates fields in the pre-hash fingerprint.
const fingerprintDelim = "|"

// Fingerprint returns the ordered, delimited concatenation of the event's
// defining fields. Absent quantity or length contributes an empty field.
func (e *Event) Fingerprint() string {
	qty := ""
	if e.Quantity != nil {
		qty = strconv.Itoa(*e.Quantity)
	}
	length := ""
	if e.AvgLength != nil {
		length = strconv.FormatFloat(*e.AvgLength, 'f', -1, 64)
	}
	return strings.Join([]string{
		e.WaterName, e.County, e.Species, qty, length, e.DateStocked,
	}, fingerprintDelim)
}

// GenerateID derives the stable event identifier from a fingerprint.
// The ID is reconstructible from content alone, so re-polling a source and
// re-extracting the same stocking always yields the same ID.
func GenerateID(fingerprint string) string {
	h := sha1.New()
	h.Write([]byte(fingerprint))
	return fmt.Sprintf("%x", h.Sum(nil))
}
