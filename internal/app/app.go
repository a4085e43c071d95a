package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dealscout/internal/extract"
	"github.com/hyperifyio/dealscout/internal/fetch"
	"github.com/hyperifyio/dealscout/internal/report"
	"github.com/hyperifyio/dealscout/internal/robots"
)

// ErrEmptyResult is carried in Result.Warning when the page was fetched but
// no product wrapper matched. It is a warning, not a failure.
var ErrEmptyResult = errors.New("no products found")

// Fetcher retrieves the markup of one page.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// Pipeline runs fetch, extraction and reporting for one URL at a time. It is
// read-only after New and safe for concurrent use.
type Pipeline struct {
	Fetcher      Fetcher
	Extractor    extract.Extractor
	ExportPrefix string
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Result holds everything produced by one run. Nothing of it is retained by
// the pipeline.
type Result struct {
	RunID     string
	URL       string
	Table     report.Table
	Stats     report.Stats
	FetchedAt time.Time
	// Warning is ErrEmptyResult when the table is empty, nil otherwise.
	Warning error

	exportPrefix string
}

// Exports renders the downloads for the result, named after FetchedAt.
func (r *Result) Exports() ([]report.Export, error) {
	return report.BuildExports(r.Table, r.Stats, r.exportPrefix, r.FetchedAt)
}

// New builds a pipeline from cfg using a fresh HTTP client.
func New(cfg Config) (*Pipeline, error) {
	return NewWithClient(cfg, newHTTPClient())
}

// NewWithClient is New with a caller-supplied HTTP client.
func NewWithClient(cfg Config, httpClient *http.Client) (*Pipeline, error) {
	if err := cfg.Selectors.Validate(); err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}
	fc := &fetch.Client{
		HTTPClient: httpClient,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.FetchTimeout,
	}
	if cfg.RespectRobots {
		ua := cfg.UserAgent
		if strings.TrimSpace(ua) == "" {
			ua = fetch.DefaultUserAgent
		}
		fc.Robots = &robots.Manager{HTTPClient: httpClient, UserAgent: ua}
	}
	return &Pipeline{
		Fetcher:      fc,
		Extractor:    extract.Extractor{Selectors: cfg.Selectors},
		ExportPrefix: cfg.ExportPrefix,
	}, nil
}

// Run fetches rawURL, extracts the listings and computes statistics. A fetch
// failure aborts the run and is returned as is, so callers can match
// *fetch.Error. An empty table is not an error; see Result.Warning.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	res := &Result{
		RunID:        uuid.NewString(),
		URL:          strings.TrimSpace(rawURL),
		exportPrefix: p.ExportPrefix,
	}
	logger := loggerFrom(ctx).With().Str("run_id", res.RunID).Str("url", res.URL).Logger()

	logger.Info().Str("stage", "fetching").Msg("fetching page")
	body, err := p.Fetcher.Get(ctx, res.URL)
	if err != nil {
		logger.Warn().Err(err).Str("stage", "fetching").Msg("fetch failed")
		return nil, err
	}
	res.FetchedAt = now()

	logger.Debug().Str("stage", "parsing").Int("bytes", len(body)).Msg("parsing page")
	rows, err := p.Extractor.Extract(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	logger.Debug().Str("stage", "reporting").Int("rows", len(rows)).Msg("computing statistics")
	res.Table = report.NewTable(rows)
	res.Stats = report.Compute(res.Table)
	if res.Table.Empty() {
		res.Warning = ErrEmptyResult
		logger.Warn().Msg("no product wrappers matched")
	}
	logger.Info().Int("rows", res.Table.Len()).Int("priced", res.Stats.PricedRows).Msg("run complete")
	return res, nil
}

// loggerFrom prefers the request-scoped logger and falls back to the global one.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
