package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/troutline/stocking-events/internal/event"
	"github.com/troutline/stocking-events/internal/extract"
	"github.com/troutline/stocking-events/internal/notify"
	"github.com/troutline/stocking-events/internal/pipeline"
	"github.com/troutline/stocking-events/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	pipe := pipeline.New(nil, extract.NewFetcher(0), st, notify.NewDryRunSender())
	return New(pipe, st), st
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestSubscribeEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"token":    "TOK1",
		"counties": []string{"WASATCH"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	subs, err := st.ListSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("listing subscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].Token != "TOK1" {
		t.Errorf("stored subscriptions = %+v", subs)
	}
}

func TestSubscribeEndpointRequiresToken(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions",
		bytes.NewReader([]byte(`{"counties":["WASATCH"]}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRecentEventsEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	qty := 500
	if _, err := st.InsertEvents(context.Background(), []*event.Event{{
		ID:          "e1",
		WaterName:   "Blue Lake",
		County:      "WASATCH",
		Species:     "RAINBOW TROUT",
		Quantity:    &qty,
		DateStocked: "2026-03-04",
		FirstSeenAt: time.Now().UTC(),
	}}); err != nil {
		t.Fatalf("seeding event: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events?limit=10", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	data, _ := io.ReadAll(resp.Body)
	var out struct {
		Events []*event.Event `json:"events"`
		Count  int            `json:"count"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Count != 1 || len(out.Events) != 1 || out.Events[0].ID != "e1" {
		t.Errorf("response = %+v", out)
	}
}

func TestRecentEventsInvalidLimit(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events?limit=zero", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
