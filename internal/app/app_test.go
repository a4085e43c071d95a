package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/hyperifyio/dealscout/internal/extract"
	"github.com/hyperifyio/dealscout/internal/fetch"
	"github.com/hyperifyio/dealscout/internal/robots"
)

const twoWrapperPage = `<!doctype html><html><body>
<div class="product-wrapper">
  <h2 class="product-title">Phone X</h2>
  <span class="strike-through">499,00€</span>
  <span class="price">399,00€</span>
</div>
<div class="product-wrapper">
  <span class="price">29,99€</span>
</div>
</body></html>`

func newTestPipeline(t *testing.T, cfg Config, srv *httptest.Server) *Pipeline {
	t.Helper()
	p, err := NewWithClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewWithClient: %v", err)
	}
	p.Now = func() time.Time { return time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC) }
	return p
}

func TestRun_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(twoWrapperPage))
	}))
	defer srv.Close()

	p := newTestPipeline(t, DefaultConfig(), srv)
	res, err := p.Run(context.Background(), " "+srv.URL+"/angebote ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Fatalf("RunID %q is not a uuid: %v", res.RunID, err)
	}
	if res.URL != srv.URL+"/angebote" {
		t.Fatalf("URL=%q", res.URL)
	}
	if res.Warning != nil {
		t.Fatalf("unexpected warning %v", res.Warning)
	}
	want := []extract.Listing{
		{Product: "Phone X", OriginalPrice: "499.00", DiscountPrice: "399.00"},
		{Product: extract.NotAvailable, OriginalPrice: extract.NotAvailable, DiscountPrice: "29.99"},
	}
	if diff := cmp.Diff(want, res.Table.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.PricedRows != 2 || res.Stats.DiscountRows != 1 || res.Stats.MaxPrice != 399 || res.Stats.MinPrice != 29.99 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}

	exports, err := res.Exports()
	if err != nil {
		t.Fatalf("Exports: %v", err)
	}
	if len(exports) != 3 || exports[0].FileName != "mediamarkt_angebote_20261018_143000.csv" {
		t.Fatalf("unexpected exports %+v", exports)
	}
}

func TestRun_RunIDsAreDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(twoWrapperPage))
	}))
	defer srv.Close()

	p := newTestPipeline(t, DefaultConfig(), srv)
	a, err := p.Run(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := p.Run(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.RunID == b.RunID {
		t.Fatalf("expected fresh run id per run")
	}
	if diff := cmp.Diff(a.Table.Rows, b.Table.Rows); diff != "" {
		t.Fatalf("identical page should give identical rows:\n%s", diff)
	}
}

func TestRun_EmptyPageWarns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>Wartungsarbeiten</p></body></html>"))
	}))
	defer srv.Close()

	res, err := newTestPipeline(t, DefaultConfig(), srv).Run(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("empty page must not be an error: %v", err)
	}
	if !errors.Is(res.Warning, ErrEmptyResult) {
		t.Fatalf("Warning=%v, want ErrEmptyResult", res.Warning)
	}
	if !res.Table.Empty() || res.Stats.HasPrices() {
		t.Fatalf("expected empty table and no stats, got %+v %+v", res.Table, res.Stats)
	}
}

func TestRun_FetchErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res, err := newTestPipeline(t, DefaultConfig(), srv).Run(context.Background(), srv.URL)
	if res != nil {
		t.Fatalf("expected no result on fetch failure")
	}
	var fe *fetch.Error
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected *fetch.Error with 503, got %v", err)
	}
}

func TestRun_CustomSelectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ul><li class="tile"><b>TV</b><i>1299</i></li></ul>`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Selectors = extract.Selectors{Wrapper: "li.tile", Title: "b", Price: "i"}
	res, err := newTestPipeline(t, cfg, srv).Run(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []extract.Listing{{Product: "TV", OriginalPrice: extract.NotAvailable, DiscountPrice: "1299"}}
	if diff := cmp.Diff(want, res.Table.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RespectsRobots(t *testing.T) {
	pageHits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /de/campaign/\n"))
			return
		}
		pageHits++
		_, _ = w.Write([]byte(twoWrapperPage))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.RespectRobots = true
	_, err := newTestPipeline(t, cfg, srv).Run(context.Background(), srv.URL+"/de/campaign/angebote-aktionen")
	if !errors.Is(err, robots.ErrDisallowed) || !fetch.IsFetchError(err) {
		t.Fatalf("expected fetch error wrapping ErrDisallowed, got %v", err)
	}
	if pageHits != 0 {
		t.Fatalf("page must not be requested when disallowed, got %d hits", pageHits)
	}
}

func TestNew_RejectsBadSelectors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Selectors.Wrapper = "div[["
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for invalid selector")
	}
}
