package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dealscout/internal/app"
	"github.com/hyperifyio/dealscout/internal/extract"
	"github.com/hyperifyio/dealscout/internal/fetch"
)

// debugfetch prints the raw extraction of a URL or a local HTML file as JSON
// lines, for checking selectors against a saved page.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	wrapper := flag.String("wrapper", "", "Wrapper selector override")
	flag.Parse()

	cfg := app.Config{}
	app.ApplyEnvToConfig(&cfg)
	target := cfg.URL
	if flag.NArg() > 0 {
		target = flag.Arg(0)
	}
	if target == "" {
		target = app.DefaultURL
	}

	var body string
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		c := &fetch.Client{UserAgent: cfg.UserAgent, Timeout: 30 * time.Second}
		b, err := c.Get(context.Background(), target)
		if err != nil {
			fmt.Println("err:", err)
			os.Exit(1)
		}
		body = b
	} else {
		b, err := os.ReadFile(target)
		if err != nil {
			fmt.Println("err:", err)
			os.Exit(1)
		}
		body = string(b)
	}

	ex := extract.Extractor{Selectors: extract.Selectors{Wrapper: *wrapper}}
	rows, err := ex.Extract(body)
	fmt.Fprintln(os.Stderr, "rows:", len(rows), "err:", err)
	enc := json.NewEncoder(os.Stdout)
	for _, r := range rows {
		_ = enc.Encode(r)
	}
}
