package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/troutline/stocking-events/internal/config"
	"github.com/troutline/stocking-events/internal/extract"
	"github.com/troutline/stocking-events/internal/match"
	"github.com/troutline/stocking-events/internal/notify"
	"github.com/troutline/stocking-events/internal/store"
)

const tabularPage = `<html><body><table>
<tr><th>Water</th><th>County</th><th>Species</th><th>Qty</th><th>Len</th><th>Date</th></tr>
<tr><td>Blue Lake</td><td>Wasatch</td><td>Rainbow Trout</td><td>1,200</td><td>10.5</td><td>3/4/2026</td></tr>
</table></body></html>`

// captureSender records dispatched batches instead of pushing them.
type captureSender struct {
	batches [][]*notify.Message
}

func (s *captureSender) Send(_ context.Context, msgs []*notify.Message) (string, error) {
	s.batches = append(s.batches, msgs)
	return `{"status":"ok"}`, nil
}

func newTestPipeline(t *testing.T, sourceURL string) (*Pipeline, *store.Store, *captureSender) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sender := &captureSender{}
	sources := []Source{{Name: "test-source", URL: sourceURL, Extractor: extract.TableExtractor{}}}
	return New(sources, extract.NewFetcher(0), st, sender), st, sender
}

func TestRunOnceEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tabularPage))
	}))
	defer srv.Close()

	pipe, st, sender := newTestPipeline(t, srv.URL)
	ctx := context.Background()

	if err := st.UpsertSubscription(ctx, &match.Subscription{
		Token:    "TOK1",
		Counties: []string{"WASATCH"},
	}); err != nil {
		t.Fatalf("seeding subscription: %v", err)
	}

	sum, err := pipe.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}

	if sum.Parsed != 1 || sum.Inserted != 1 {
		t.Errorf("parsed=%d inserted=%d, want 1/1", sum.Parsed, sum.Inserted)
	}
	if sum.Subscriptions != 1 || sum.Matched != 1 || sum.Pushed != 1 {
		t.Errorf("subscriptions=%d matched=%d pushed=%d, want 1/1/1",
			sum.Subscriptions, sum.Matched, sum.Pushed)
	}
	if sum.CycleID == "" {
		t.Error("summary missing cycle ID")
	}
	if sum.TransportResponse != `{"status":"ok"}` {
		t.Errorf("transport response = %q", sum.TransportResponse)
	}

	if len(sender.batches) != 1 || len(sender.batches[0]) != 1 {
		t.Fatalf("expected one batch with one message, got %+v", sender.batches)
	}
	msg := sender.batches[0][0]
	wantBody := `Blue Lake (WASATCH) — 1,200 fish • 10.5" avg — 2026-03-04`
	if msg.Body != wantBody {
		t.Errorf("message body = %q, want %q", msg.Body, wantBody)
	}
	if msg.To != "TOK1" {
		t.Errorf("message to = %q", msg.To)
	}
}

func TestRunOnceIdempotentAcrossCycles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tabularPage))
	}))
	defer srv.Close()

	pipe, st, sender := newTestPipeline(t, srv.URL)
	ctx := context.Background()
	if err := st.UpsertSubscription(ctx, &match.Subscription{Token: "TOK1"}); err != nil {
		t.Fatalf("seeding subscription: %v", err)
	}

	first, err := pipe.RunOnce(ctx)
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	second, err := pipe.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	if first.Inserted != 1 {
		t.Errorf("first cycle inserted = %d, want 1", first.Inserted)
	}
	if second.Parsed != 1 {
		t.Errorf("second cycle parsed = %d, want 1", second.Parsed)
	}
	if second.Inserted != 0 || second.Matched != 0 || second.Pushed != 0 {
		t.Errorf("second cycle should be quiet: %+v", second)
	}
	if len(sender.batches) != 1 {
		t.Errorf("re-polling identical content dispatched %d batches, want 1", len(sender.batches))
	}
}

func TestRunOnceFetchFailureAbortsCycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pipe, _, sender := newTestPipeline(t, srv.URL)

	if _, err := pipe.RunOnce(context.Background()); err == nil {
		t.Fatal("expected fetch failure to fail the cycle")
	}
	if len(sender.batches) != 0 {
		t.Error("failed cycle must not dispatch notifications")
	}
}

type failingSender struct{}

func (failingSender) Send(context.Context, []*notify.Message) (string, error) {
	return "transport said no", context.DeadlineExceeded
}

func TestRunOnceDispatchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tabularPage))
	}))
	defer srv.Close()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.UpsertSubscription(ctx, &match.Subscription{Token: "TOK1"}); err != nil {
		t.Fatalf("seeding subscription: %v", err)
	}

	sources := []Source{{Name: "test-source", URL: srv.URL, Extractor: extract.TableExtractor{}}}
	pipe := New(sources, extract.NewFetcher(0), st, failingSender{})

	_, err = pipe.RunOnce(ctx)
	if err == nil {
		t.Fatal("expected dispatch failure to fail the cycle")
	}
	if !strings.Contains(err.Error(), "dispatching notifications") {
		t.Errorf("error = %v", err)
	}
}

func TestSourcesFromConfig(t *testing.T) {
	srcs, err := SourcesFromConfig([]config.SourceConfig{
		{Name: "a", URL: "http://a", Strategy: config.StrategyTable},
		{Name: "b", URL: "http://b", Strategy: config.StrategyFreeText, StartMarker: "Report"},
	})
	if err != nil {
		t.Fatalf("SourcesFromConfig() failed: %v", err)
	}
	if len(srcs) != 2 {
		t.Fatalf("got %d sources, want 2", len(srcs))
	}
	if _, ok := srcs[0].Extractor.(extract.TableExtractor); !ok {
		t.Errorf("source a extractor = %T", srcs[0].Extractor)
	}
	if _, ok := srcs[1].Extractor.(extract.FreeTextExtractor); !ok {
		t.Errorf("source b extractor = %T", srcs[1].Extractor)
	}

	if _, err := SourcesFromConfig([]config.SourceConfig{{Name: "c", Strategy: "rss"}}); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
