// Package pipeline orchestrates one poll cycle: fetch each source, extract
// and normalize rows, ingest with store-level dedup, match the genuinely
// new events against subscriber filters, and dispatch notifications.
//
// The flow is strictly sequential and non-reentrant within a cycle; no
// stage calls backward. Fetch and dispatch failures abort the rest of the
// cycle, while per-row anomalies only shrink the batch. The store handle
// is injected so tests can run the whole pipeline against a throwaway
// database.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/troutline/stocking-events/internal/event"
	"github.com/troutline/stocking-events/internal/extract"
	"github.com/troutline/stocking-events/internal/logger"
	"github.com/troutline/stocking-events/internal/metrics"
	"github.com/troutline/stocking-events/internal/notify"
	"github.com/troutline/stocking-events/internal/store"
)

// Announcer mirrors newly discovered stockings to a public channel.
// Announcing is best-effort; a failure never fails the cycle.
type Announcer interface {
	Announce(events []*event.Event) error
}

// Summary is the structured result of one poll cycle. It is either fully
// populated or withheld behind an error, never half-filled.
type Summary struct {
	CycleID           string    `json:"cycle_id"`
	StartedAt         time.Time `json:"started_at"`
	Parsed            int       `json:"parsed"`
	Inserted          int       `json:"inserted"`
	Subscriptions     int       `json:"subscriptions"`
	Matched           int       `json:"matched"`
	Pushed            int       `json:"pushed"`
	TransportResponse string    `json:"transport_response,omitempty"`
}

// Pipeline wires the poll cycle's collaborators together.
type Pipeline struct {
	sources   []Source
	fetcher   *extract.Fetcher
	store     *store.Store
	sender    notify.Sender
	announcer Announcer
}

// New creates a pipeline over the given sources and collaborators.
func New(sources []Source, fetcher *extract.Fetcher, st *store.Store, sender notify.Sender) *Pipeline {
	return &Pipeline{
		sources: sources,
		fetcher: fetcher,
		store:   st,
		sender:  sender,
	}
}

// SetAnnouncer attaches an optional public announcer for new stockings.
func (p *Pipeline) SetAnnouncer(a Announcer) {
	p.announcer = a
}

// RunOnce executes the full pipeline once and returns its summary.
func (p *Pipeline) RunOnce(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{
		CycleID:   uuid.NewString(),
		StartedAt: start.UTC(),
	}

	summary, err := p.run(ctx, sum, start)
	if err != nil {
		metrics.PollCycles.WithLabelValues("error").Inc()
		logger.Error("poll cycle failed", logger.Fields{"cycle_id": sum.CycleID}, err)
		return nil, err
	}
	metrics.PollCycles.WithLabelValues("ok").Inc()
	metrics.PollDuration.Observe(time.Since(start).Seconds())
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, sum *Summary, now time.Time) (*Summary, error) {
	// Extract and normalize every source, deduplicating by event ID
	// across sources as well as within each page.
	seen := make(map[string]bool)
	var batch []*event.Event
	for _, src := range p.sources {
		body, err := p.fetcher.Get(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetching source %s: %w", src.Name, err)
		}
		rows := src.Extractor.Extract(body)
		events := event.Normalize(rows, now)
		for _, evt := range events {
			if seen[evt.ID] {
				continue
			}
			seen[evt.ID] = true
			batch = append(batch, evt)
		}
		logger.Debug("source extracted", logger.Fields{
			"cycle_id": sum.CycleID,
			"source":   src.Name,
			"rows":     len(rows),
			"events":   len(events),
		})
	}
	sum.Parsed = len(batch)
	metrics.EventsParsed.Add(float64(len(batch)))

	res, err := p.store.InsertEvents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("ingesting events: %w", err)
	}
	sum.Inserted = res.Inserted
	metrics.EventsInserted.Add(float64(res.Inserted))

	subs, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	sum.Subscriptions = len(subs)

	msgs := notify.Collect(res.NewRecords, subs)
	sum.Matched = len(msgs)

	if len(msgs) > 0 {
		resp, err := p.sender.Send(ctx, msgs)
		sum.TransportResponse = resp
		if err != nil {
			return nil, fmt.Errorf("dispatching notifications: %w", err)
		}
		sum.Pushed = len(msgs)
		metrics.NotificationsSent.Add(float64(len(msgs)))
	}

	if p.announcer != nil && len(res.NewRecords) > 0 {
		if err := p.announcer.Announce(res.NewRecords); err != nil {
			logger.Warn("announcing new stockings failed", logger.Fields{
				"cycle_id": sum.CycleID,
				"events":   len(res.NewRecords),
				"error":    err.Error(),
			})
		}
	}

	logger.Info("poll cycle complete", logger.Fields{
		"cycle_id":      sum.CycleID,
		"parsed":        sum.Parsed,
		"inserted":      sum.Inserted,
		"subscriptions": sum.Subscriptions,
		"matched":       sum.Matched,
		"pushed":        sum.Pushed,
	})
	return sum, nil
}
