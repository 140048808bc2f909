package notify

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/troutline/stocking-events/internal/event"
	"github.com/troutline/stocking-events/internal/match"
)

// Message is one push notification bound for a subscriber's device. It is
// ephemeral: built, dispatched, and forgotten within a single poll cycle.
// Its identity for dedup purposes is the (To, event id) pair.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Build formats one notification for a matching (event, subscription) pair.
func Build(evt *event.Event, sub *match.Subscription) *Message {
	body := fmt.Sprintf("%s (%s) — %s", evt.WaterName, evt.County, quantityPhrase(evt))
	if evt.AvgLength != nil {
		body += fmt.Sprintf(" • %s\" avg", strconv.FormatFloat(*evt.AvgLength, 'f', -1, 64))
	}
	body += " — " + evt.DateStocked

	return &Message{
		To:    sub.Token,
		Title: fmt.Sprintf("🎣 %s stocked", evt.Species),
		Body:  body,
		Data:  map[string]string{"event_id": evt.ID},
	}
}

// quantityPhrase humanizes the stocked count with thousands separators, or
// falls back to a generic phrase when the source didn't disclose one.
func quantityPhrase(evt *event.Event) string {
	if evt.Quantity == nil {
		return "Fish stocked"
	}
	return humanize.Comma(int64(*evt.Quantity)) + " fish"
}

// Collect builds one message per matching (event, subscription) pair and
// dedupes the batch.
func Collect(events []*event.Event, subs []*match.Subscription) []*Message {
	pairs := match.Pairs(events, subs)
	msgs := make([]*Message, 0, len(pairs))
	for _, p := range pairs {
		msgs = append(msgs, Build(p.Event, p.Subscription))
	}
	return Dedupe(msgs)
}

// Dedupe collapses messages sharing a (destination, event id) key,
// keeping first occurrences in order.
func Dedupe(msgs []*Message) []*Message {
	seen := make(map[string]bool, len(msgs))
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		key := m.To + "\x00" + m.Data["event_id"]
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
