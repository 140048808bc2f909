// Package match decides which subscribers should hear about which newly
// discovered stocking events.
//
// A subscription carries three independent filter sets: counties, species,
// and waters. An empty set is a wildcard for that dimension; a non-empty
// set matches only on exact membership. An event matches a subscription
// when all three dimensions match.
package match

import (
	"strings"
	"time"

	"github.com/troutline/stocking-events/internal/event"
)

// Subscription is one subscriber's filter profile, keyed by their push
// destination token. Re-submission overwrites all three filter sets.
type Subscription struct {
	Token     string    `json:"token"`
	Counties  []string  `json:"counties"`
	Species   []string  `json:"species"`
	Waters    []string  `json:"waters"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matches reports whether the event passes all three filter dimensions.
// The predicate is pure; comparisons are case-insensitive via uppercasing
// and ignore surrounding whitespace on both sides.
func (s *Subscription) Matches(evt *event.Event) bool {
	return dimensionMatches(s.Counties, evt.County) &&
		dimensionMatches(s.Species, evt.Species) &&
		dimensionMatches(s.Waters, evt.WaterName)
}

func dimensionMatches(accepted []string, value string) bool {
	if len(accepted) == 0 {
		return true
	}
	v := strings.ToUpper(strings.TrimSpace(value))
	for _, a := range accepted {
		if strings.ToUpper(strings.TrimSpace(a)) == v {
			return true
		}
	}
	return false
}

// Pair is one matching (event, subscription) combination.
type Pair struct {
	Event        *event.Event
	Subscription *Subscription
}

// Pairs crosses the cycle's new events with every subscription that has a
// destination token and collects the matching combinations. Both sets are
// small (tens to low hundreds), so the full cross product is fine; index
// subscriptions per dimension before scaling this up.
func Pairs(events []*event.Event, subs []*Subscription) []Pair {
	var pairs []Pair
	for _, sub := range subs {
		if strings.TrimSpace(sub.Token) == "" {
			continue
		}
		for _, evt := range events {
			if sub.Matches(evt) {
				pairs = append(pairs, Pair{Event: evt, Subscription: sub})
			}
		}
	}
	return pairs
}
