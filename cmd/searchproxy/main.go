package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchproxy/internal/app"
	"github.com/hyperifyio/searchproxy/internal/server"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	def := app.DefaultConfig()
	cfg := def

	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("SEARCHPROXY_CONFIG"), "Path to YAML/JSON config file (optional)")
	flag.StringVar(&cfg.Addr, "addr", defaultAddr(def.Addr), "HTTP listen address")
	flag.StringVar(&cfg.Provider, "search.provider", envOr("SEARCH_PROVIDER", def.Provider), "Search provider: duckduckgo, searxng or file")
	flag.StringVar(&cfg.SearxURL, "searx.url", os.Getenv("SEARX_URL"), "SearxNG base URL")
	flag.StringVar(&cfg.SearxKey, "searx.key", os.Getenv("SEARX_KEY"), "SearxNG API key (optional)")
	flag.StringVar(&cfg.SearxUA, "searx.ua", os.Getenv("SEARX_UA"), "Custom User-Agent for SearxNG requests")
	flag.StringVar(&cfg.Language, "search.lang", "", "Optional language hint, e.g. 'en'")
	flag.StringVar(&cfg.SearchFile, "search.file", os.Getenv("SEARCH_FILE"), "Path to JSON file for the offline file provider")
	flag.IntVar(&cfg.MaxResults, "search.max", def.MaxResults, "Maximum hits requested per search")
	flag.DurationVar(&cfg.FetchTimeout, "fetch.timeout", def.FetchTimeout, "Hard timeout per page fetch")
	flag.StringVar(&cfg.FetchUserAgent, "fetch.ua", "", "Override User-Agent for page fetches")
	flag.Int64Var(&cfg.MaxBodyBytes, "fetch.maxBodyBytes", def.MaxBodyBytes, "Cap on fetched page body size")
	flag.Float64Var(&cfg.FetchRPS, "fetch.rps", 0, "Outbound fetch rate limit in requests/second; 0 disables")
	flag.StringVar(&cfg.Extractor, "extract.mode", def.Extractor, "Extraction strategy: tiered or readability")
	flag.IntVar(&cfg.MaxContentChars, "extract.maxChars", def.MaxContentChars, "Content length bound before truncation")
	flag.IntVar(&cfg.MaxParagraphs, "extract.maxParagraphs", def.MaxParagraphs, "Paragraphs considered by the paragraph tier")
	flag.IntVar(&cfg.MinParagraphChars, "extract.minParagraphChars", def.MinParagraphChars, "Length floor for kept paragraphs")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init service")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("provider", cfg.Provider).Msg("listening on http")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server exited")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// defaultAddr honors the PORT environment variable, matching common PaaS
// conventions.
func defaultAddr(fallback string) string {
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		return ":" + p
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
