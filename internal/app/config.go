package app

import (
	"time"

	"github.com/hyperifyio/dealscout/internal/extract"
	"github.com/hyperifyio/dealscout/internal/report"
)

const (
	// DefaultAddr is where the web interface listens unless configured.
	DefaultAddr = ":8080"
	// DefaultURL is the campaign page pre-filled in the form.
	DefaultURL = "https://www.mediamarkt.de/de/campaign/angebote-aktionen"
)

// Config holds runtime configuration for the application.
type Config struct {
	Addr string
	URL  string

	// Fetching
	UserAgent     string
	FetchTimeout  time.Duration
	RespectRobots bool

	Selectors    extract.Selectors
	ExportPrefix string

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		URL:          DefaultURL,
		Selectors:    extract.DefaultSelectors(),
		ExportPrefix: report.DefaultExportPrefix,
	}
}
