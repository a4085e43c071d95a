package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dealscout/internal/app"
	"github.com/hyperifyio/dealscout/internal/report"
	"github.com/hyperifyio/dealscout/internal/web"
)

type options struct {
	addr       string
	configPath string
	envFiles   string
	url        string
	csvPath    string
	xlsxPath   string
	pdfPath    string
	userAgent  string
	robots     bool
	verbose    bool
	version    bool
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	opts, set, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(app.VersionString())
		return
	}

	if err := app.LoadEnvFiles(strings.Split(opts.envFiles, ",")...); err != nil {
		log.Fatal().Err(err).Msg("load env files")
	}
	cfg, err := buildConfig(opts, set)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.url != "" {
		err = runOnce(ctx, cfg, opts, os.Stdout)
	} else {
		err = serve(ctx, cfg)
	}
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when nothing was extracted, 1 for any failure.
		if errors.Is(err, app.ErrEmptyResult) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, map[string]bool, error) {
	var opts options
	fs := flag.NewFlagSet("dealscout", flag.ContinueOnError)
	fs.StringVar(&opts.addr, "addr", app.DefaultAddr, "Listen address of the web interface")
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	fs.StringVar(&opts.envFiles, "env", ".env", "Comma-separated dotenv files to load")
	fs.StringVar(&opts.url, "url", "", "Scrape this URL once, print the table and exit")
	fs.StringVar(&opts.csvPath, "csv", "", "With -url: write CSV to this file or directory")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "With -url: write Excel workbook to this file or directory")
	fs.StringVar(&opts.pdfPath, "pdf", "", "With -url: write PDF to this file or directory")
	fs.StringVar(&opts.userAgent, "ua", "", "User-Agent header for page requests")
	fs.BoolVar(&opts.robots, "robots", false, "Consult robots.txt before fetching")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

// buildConfig applies defaults, then the config file, then environment
// variables, and finally the flags that were given explicitly.
func buildConfig(opts options, set map[string]bool) (app.Config, error) {
	cfg := app.DefaultConfig()
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", opts.configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	if set["addr"] {
		cfg.Addr = opts.addr
	}
	if set["url"] {
		cfg.URL = opts.url
	}
	if set["ua"] {
		cfg.UserAgent = opts.userAgent
	}
	if set["robots"] {
		cfg.RespectRobots = opts.robots
	}
	if set["v"] {
		cfg.Verbose = opts.verbose
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg app.Config) error {
	p, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           (&web.Server{Pipeline: p, DefaultURL: cfg.URL, Logger: log.Logger}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", app.BuildVersion).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// runOnce performs one scrape in the terminal. An empty table is reported
// as ErrEmptyResult after the warning has been printed.
func runOnce(ctx context.Context, cfg app.Config, opts options, stdout io.Writer) error {
	p, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	return runWith(ctx, p, cfg.URL, opts, stdout)
}

func runWith(ctx context.Context, p *app.Pipeline, url string, opts options, stdout io.Writer) error {
	res, err := p.Run(ctx, url)
	if err != nil {
		fmt.Fprintf(stdout, "Fehler beim Scrapen: %v\n", err)
		return err
	}
	report.Render(stdout, res.Table, res.Stats)
	if res.Warning != nil {
		return res.Warning
	}

	targets := map[string]string{"csv": opts.csvPath, "xlsx": opts.xlsxPath, "pdf": opts.pdfPath}
	if targets["csv"] == "" && targets["xlsx"] == "" && targets["pdf"] == "" {
		return nil
	}
	exports, err := res.Exports()
	if err != nil {
		return fmt.Errorf("build exports: %w", err)
	}
	for _, e := range exports {
		ext := strings.TrimPrefix(filepath.Ext(e.FileName), ".")
		dest := targets[ext]
		if dest == "" {
			continue
		}
		path, err := writeExport(dest, e)
		if err != nil {
			return err
		}
		log.Info().Str("out", path).Int("bytes", len(e.Data)).Msg("wrote export")
	}
	return nil
}

// writeExport writes e to dest. A directory destination gets the generated
// timestamped file name.
func writeExport(dest string, e report.Export) (string, error) {
	if fi, err := os.Stat(dest); (err == nil && fi.IsDir()) || strings.HasSuffix(dest, string(os.PathSeparator)) {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dest, err)
		}
		dest = filepath.Join(dest, e.FileName)
	}
	if err := os.WriteFile(dest, e.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}
