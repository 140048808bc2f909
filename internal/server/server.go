// Package server exposes the HTTP surface consumed by the mobile client
// and by operators: on-demand polling, subscription upserts, recent-event
// browsing, health, and Prometheus metrics.
package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/troutline/stocking-events/internal/match"
	"github.com/troutline/stocking-events/internal/pipeline"
	"github.com/troutline/stocking-events/internal/store"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// Server routes API requests onto the pipeline and the record store.
type Server struct {
	app   *fiber.App
	pipe  *pipeline.Pipeline
	store *store.Store
}

// New builds the fiber app and its routes.
func New(pipe *pipeline.Pipeline, st *store.Store) *Server {
	s := &Server{
		app:   fiber.New(fiber.Config{AppName: "stocking-events"}),
		pipe:  pipe,
		store: st,
	}

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	s.app.Post("/api/poll", s.handlePoll)
	s.app.Post("/api/subscriptions", s.handleSubscribe)
	s.app.Get("/api/events", s.handleRecentEvents)

	return s
}

// Listen serves the API on addr until the process exits.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handlePoll runs one pipeline cycle on demand and returns its summary.
// Concurrent polls are safe: the store's transactional ingest is the
// guard against double-insertion.
func (s *Server) handlePoll(c fiber.Ctx) error {
	sum, err := s.pipe.RunOnce(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sum)
}

type subscribeRequest struct {
	Token    string   `json:"token"`
	Counties []string `json:"counties"`
	Species  []string `json:"species"`
	Waters   []string `json:"waters"`
}

func (s *Server) handleSubscribe(c fiber.Ctx) error {
	var req subscribeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Token) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}

	sub := &match.Subscription{
		Token:    req.Token,
		Counties: req.Counties,
		Species:  req.Species,
		Waters:   req.Waters,
	}
	if err := s.store.UpsertSubscription(c.Context(), sub); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleRecentEvents(c fiber.Ctx) error {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
		}
		limit = min(n, maxRecentLimit)
	}

	events, err := s.store.RecentEvents(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}
