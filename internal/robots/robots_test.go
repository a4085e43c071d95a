package robots

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const testUA = "Mozilla/5.0 (X11; Linux x86_64) dealscout-test"

func TestCheck_DisallowedPath(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /de/checkout\n"))
	}))
	t.Cleanup(srv.Close)

	m := &Manager{HTTPClient: srv.Client(), UserAgent: testUA}
	if err := m.Check(context.Background(), srv.URL+"/de/checkout/cart"); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("expected ErrDisallowed, got %v", err)
	}
	if err := m.Check(context.Background(), srv.URL+"/de/campaign/angebote-aktionen"); err != nil {
		t.Fatalf("expected campaign page allowed, got %v", err)
	}
}

func TestCheck_MissingRobotsAllowsEverything(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	m := &Manager{HTTPClient: srv.Client(), UserAgent: testUA}
	if err := m.Check(context.Background(), srv.URL+"/any/path"); err != nil {
		t.Fatalf("expected allow when robots.txt is missing, got %v", err)
	}
}

func TestCheck_ServerErrorIsReported(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	m := &Manager{HTTPClient: srv.Client(), UserAgent: testUA}
	err := m.Check(context.Background(), srv.URL+"/any")
	if err == nil {
		t.Fatalf("expected error on 5xx robots.txt")
	}
	if errors.Is(err, ErrDisallowed) {
		t.Fatalf("5xx should not be reported as a disallow")
	}
}

func TestCheck_SendsUserAgent(t *testing.T) {
	t.Parallel()
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	t.Cleanup(srv.Close)

	m := &Manager{HTTPClient: srv.Client(), UserAgent: testUA}
	if err := m.Check(context.Background(), srv.URL+"/"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if ua, _ := got.Load().(string); ua != testUA {
		t.Fatalf("User-Agent=%q, want %q", ua, testUA)
	}
}

func TestCheck_RejectsNonHTTP(t *testing.T) {
	t.Parallel()
	m := &Manager{UserAgent: testUA}
	if err := m.Check(context.Background(), "ftp://example.com/file"); err == nil {
		t.Fatalf("expected error for non-http url")
	}
}

func TestEvaluate_UAPrecedence_AndPathDecisions(t *testing.T) {
	t.Parallel()
	txt := `User-agent: dealscout
Disallow: /private

User-agent: *
Allow: /
`
	rules := parseRobots(txt)

	if allowed := rules.IsAllowed("dealscout/1.0", "/private/page"); allowed {
		t.Fatalf("expected disallow for dealscout on /private/page")
	}
	if allowed := rules.IsAllowed("otheragent", "/private/page"); !allowed {
		t.Fatalf("expected allow for otheragent via wildcard allow")
	}

	txt2 := `User-agent: *
Disallow: /private
Allow: /private/public
`
	rules2 := parseRobots(txt2)
	if allowed := rules2.IsAllowed(testUA, "/private/public/info"); !allowed {
		t.Fatalf("expected allow due to longer Allow rule")
	}
	if allowed := rules2.IsAllowed(testUA, "/private/else"); allowed {
		t.Fatalf("expected disallow for shorter path under disallow")
	}
}

func TestEvaluate_Wildcards_And_Anchors(t *testing.T) {
	t.Parallel()
	txt := `User-agent: *
Disallow: /*.json$ # api dumps
Allow: /public/*.json$
Disallow: /*?page=
`
	rules := parseRobots(txt)

	if allowed := rules.IsAllowed(testUA, "/foo/data.json"); allowed {
		t.Fatalf("expected disallow for generic *.json")
	}
	if allowed := rules.IsAllowed(testUA, "/public/data.json"); !allowed {
		t.Fatalf("expected allow for public/*.json due to longer allow")
	}
	if allowed := rules.IsAllowed(testUA, "/de/angebote?page=2"); allowed {
		t.Fatalf("expected disallow when wildcard matches query")
	}
	if allowed := rules.IsAllowed(testUA, "/de/angebote"); !allowed {
		t.Fatalf("expected allow without query")
	}
}

func TestParse_EmptyDisallowMeansAllowAll(t *testing.T) {
	t.Parallel()
	rules := parseRobots("User-agent: *\nDisallow:\n")
	if !rules.IsAllowed(testUA, "/anything") {
		t.Fatalf("empty Disallow must not restrict")
	}
}
