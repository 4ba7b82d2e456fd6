// Command playlist-creator turns a spoken-word transcript into a music
// service playlist: an LLM extracts song mentions, a catalog backend finds
// candidate tracks, and the user reviews the matches card by card before the
// playlist is created.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brookscl/playlist-creator/internal/config"
	"github.com/brookscl/playlist-creator/internal/extract"
	"github.com/brookscl/playlist-creator/internal/match"
	"github.com/brookscl/playlist-creator/internal/observe"
	"github.com/brookscl/playlist-creator/internal/resilience"
	"github.com/brookscl/playlist-creator/internal/review"
	"github.com/brookscl/playlist-creator/internal/transcript"
	"github.com/brookscl/playlist-creator/internal/workflow"
	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/catalog/itunes"
	"github.com/brookscl/playlist-creator/pkg/catalog/spotify"
	"github.com/brookscl/playlist-creator/pkg/provider/llm"
	"github.com/brookscl/playlist-creator/pkg/provider/llm/anyllm"
	"github.com/brookscl/playlist-creator/pkg/provider/llm/openai"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	transcriptPath := flag.String("transcript", "", "path to the transcript file (.txt or .vtt)")
	playlistName := flag.String("name", "", "playlist name (default: derived from the transcript file)")
	autoOnly := flag.Bool("auto", false, "skip interactive review and keep only auto-accepted matches")
	flag.Parse()

	if *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "playlist-creator: -transcript is required")
		flag.Usage()
		return 2
	}

	// ── Environment overlay ────────────────────────────────────────────────────
	// Credentials usually live in .env rather than the config file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "err", err)
	}

	// ── Load configuration ─────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "playlist-creator: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "playlist-creator: %v\n", err)
		}
		return 1
	}

	// ── Logger ─────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.LogLevel))

	// ── Signal context ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ────────────────────────────────────────────────────────────────
	metrics, shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "playlist-creator",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	// ── Providers ──────────────────────────────────────────────────────────────
	provider, err := buildLLMProvider(cfg)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}

	cat, err := buildCatalog(cfg)
	if err != nil {
		slog.Error("failed to build catalog backend", "err", err)
		return 1
	}

	extractor, err := extract.New(provider,
		extract.WithTemperature(cfg.LLM.Temperature),
		extract.WithMaxTokens(cfg.LLM.MaxTokens),
		extract.WithRequestInterval(time.Duration(cfg.LLM.RequestIntervalMS)*time.Millisecond),
		extract.WithRetries(cfg.LLM.MaxRetries, time.Duration(cfg.LLM.RetryBaseDelayMS)*time.Millisecond),
		extract.WithMetrics(metrics),
	)
	if err != nil {
		slog.Error("failed to create extraction client", "err", err)
		return 1
	}

	// ── Transcript ─────────────────────────────────────────────────────────────
	t, err := transcript.Load(*transcriptPath)
	if err != nil {
		slog.Error("failed to load transcript", "path", *transcriptPath, "err", err)
		return 1
	}

	// ── Pipeline ───────────────────────────────────────────────────────────────
	threshold := cfg.Matching.AutoAcceptThreshold
	wf := workflow.New(extractor, cat,
		workflow.WithSelector(match.NewSelector(threshold)),
		workflow.WithSearchConcurrency(cfg.Matching.SearchConcurrency),
		workflow.WithMetrics(metrics),
	)

	if err := wf.Begin(t); err != nil {
		return fail(wf, err)
	}

	fmt.Println("Extracting songs from transcript…")
	if err := wf.RunExtraction(ctx); err != nil {
		return fail(wf, err)
	}
	fmt.Printf("Found %d song mention(s).\n", len(wf.Extracted()))

	fmt.Printf("Searching %s…\n", cat.Name())
	if err := wf.RunSearch(ctx); err != nil {
		return fail(wf, err)
	}

	sum := wf.Summary()
	fmt.Printf("Matched %d song(s): %d auto-accepted, %d awaiting review.\n",
		sum.Total, sum.AutoSelected, sum.RequiresReview)

	// ── Review ─────────────────────────────────────────────────────────────────
	session := review.NewSession(wf.Matches())
	if *autoOnly {
		session.RejectAll()
	} else if err := runReview(ctx, session); err != nil {
		return fail(wf, err)
	}

	if wf.Summary().AutoSelected == 0 && !anySelected(wf.Matches()) {
		fmt.Println("No songs selected; nothing to create.")
		return 0
	}

	// ── Playlist creation ──────────────────────────────────────────────────────
	name := *playlistName
	if name == "" {
		name = defaultPlaylistName(*transcriptPath)
	}
	fmt.Printf("Creating playlist %q…\n", name)
	if err := wf.CreatePlaylist(ctx, name); err != nil {
		return fail(wf, err)
	}

	pl := wf.Playlist()
	fmt.Printf("Created %q with %d song(s).\n", pl.Name, pl.SongCount)
	if pl.URL != "" {
		fmt.Println(pl.URL)
	}
	return 0
}

// version is stamped via -ldflags at release time.
var version = "dev"

// fail reports a workflow failure to the user and maps it to an exit code.
func fail(wf *workflow.Workflow, err error) int {
	msg := wf.ErrorMessage()
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintf(os.Stderr, "playlist-creator: %s\n", msg)
	return 1
}

// anySelected reports whether the user accepted at least one match.
func anySelected(matches []songs.MatchedSong) bool {
	for _, m := range matches {
		if m.Status == songs.StatusSelected {
			return true
		}
	}
	return false
}

// defaultPlaylistName derives a playlist name from the transcript filename.
func defaultPlaylistName(path string) string {
	base := strings.TrimSuffix(path, ".txt")
	base = strings.TrimSuffix(base, ".vtt")
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if base == "" {
		base = "Transcript Playlist"
	}
	return base
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildLLMProvider constructs the configured completion backend, wrapping
// primary and fallback in a circuit-breaking failover group when both are set.
func buildLLMProvider(cfg *config.Config) (llm.Provider, error) {
	primary, err := buildCompletionBackend(cfg, cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.FallbackProvider == "" {
		return primary, nil
	}

	fallbackModel := cfg.LLM.FallbackModel
	if fallbackModel == "" {
		fallbackModel = cfg.LLM.Model
	}
	fallback, err := buildCompletionBackend(cfg, cfg.LLM.FallbackProvider, fallbackModel, "")
	if err != nil {
		return nil, err
	}
	group := resilience.NewLLMFallback(primary, cfg.LLM.Provider, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
		},
	})
	group.AddFallback(cfg.LLM.FallbackProvider, fallback)
	return group, nil
}

// buildCompletionBackend constructs a single completion backend. "openai" uses
// the native SDK; every other provider goes through the any-llm bridge, which
// covers anthropic, gemini, ollama and friends. baseURL overrides the
// provider's default endpoint and applies to the primary only.
func buildCompletionBackend(cfg *config.Config, providerName, model, baseURL string) (llm.Provider, error) {
	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if providerName == "openai" {
		var opts []openai.Option
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(apiKey, model, opts...)
	}

	var opts []anyllmlib.Option
	if apiKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(baseURL))
	}
	return anyllm.New(providerName, model, opts...)
}

// buildCatalog constructs the configured catalog backend, wrapping primary
// and fallback in a circuit-breaking failover group when both are set.
func buildCatalog(cfg *config.Config) (catalog.Client, error) {
	primary, err := buildBackend(cfg, cfg.Catalog.Primary)
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Fallback == "" {
		return primary, nil
	}

	fallback, err := buildBackend(cfg, cfg.Catalog.Fallback)
	if err != nil {
		return nil, err
	}
	group := resilience.NewCatalogFallback(primary, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
		},
	})
	group.AddFallback(fallback)
	return group, nil
}

func buildBackend(cfg *config.Config, b catalog.Backend) (catalog.Client, error) {
	switch b {
	case catalog.BackendSpotify:
		secret := cfg.Catalog.Spotify.ClientSecret
		if secret == "" {
			secret = os.Getenv("SPOTIFY_CLIENT_SECRET")
		}
		clientID := cfg.Catalog.Spotify.ClientID
		if clientID == "" {
			clientID = os.Getenv("SPOTIFY_CLIENT_ID")
		}
		var opts []spotify.Option
		if cfg.Catalog.Spotify.SearchLimit > 0 {
			opts = append(opts, spotify.WithSearchLimit(cfg.Catalog.Spotify.SearchLimit))
		}
		return spotify.New(clientID, secret, opts...), nil
	case catalog.BackendITunes:
		var opts []itunes.Option
		if cfg.Catalog.ITunes.SearchLimit > 0 {
			opts = append(opts, itunes.WithSearchLimit(cfg.Catalog.ITunes.SearchLimit))
		}
		return itunes.New(opts...), nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", b)
	}
}

// ── Interactive review ────────────────────────────────────────────────────────

// runReview walks the user through every pending match on stdin.
func runReview(ctx context.Context, session *review.Session) error {
	if session.Remaining() == 0 {
		return nil
	}

	fmt.Println()
	fmt.Println("Review matches — [y] accept, [n] skip, [u] undo, [a] accept rest, [r] reject rest, [q] quit")
	scanner := bufio.NewScanner(os.Stdin)

	for !session.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		current := session.Current()
		if current == nil {
			break
		}
		if current.Status != songs.StatusPending {
			// Auto-accepted cards need no decision; pass over them.
			_ = session.Accept()
			continue
		}
		printCard(session.Index(), current)

		fmt.Print("> ")
		if !scanner.Scan() {
			// EOF on stdin: keep whatever has been decided so far.
			break
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			if err := session.Accept(); err != nil {
				return err
			}
		case "n", "no", "s":
			if err := session.Reject(); err != nil {
				return err
			}
		case "u", "undo":
			if err := session.Undo(); err != nil {
				fmt.Println(err)
			}
		case "a", "all":
			session.AcceptAll()
		case "r", "reject":
			session.RejectAll()
		case "q", "quit":
			return nil
		default:
			fmt.Println("unrecognised input; [y]es, [n]o, [u]ndo, [a]ll, [r]eject rest, [q]uit")
		}
	}
	return scanner.Err()
}

// printCard renders one match for review.
func printCard(index int, m *songs.MatchedSong) {
	fmt.Println()
	fmt.Printf("#%d  %s — %s\n", index+1, m.Original.Title, m.Original.Artist)
	fmt.Printf("    ↳ %s — %s  (%.0f%% %s)\n",
		m.Catalog.Title, m.Catalog.Artist,
		m.Catalog.Confidence*100, match.QualityOf(m.Catalog.Confidence))
	if m.Original.Context != "" {
		fmt.Printf("    “%s”\n", m.Original.Context)
	}
	if m.PreviewURL != "" {
		fmt.Printf("    preview: %s\n", m.PreviewURL)
	}
}

// ── Metrics endpoint ──────────────────────────────────────────────────────────

// serveMetrics exposes the Prometheus bridge on addr. Errors are logged, not
// fatal: the pipeline works fine without scraping.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("metrics endpoint error", "err", err)
	}
}

// ── Logger ────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
