// Package main provides the lyricpost entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/app/boilerplate"
	"github.com/osa030/lyricpost/internal/app/excerpt"
	"github.com/osa030/lyricpost/internal/app/filter"
	"github.com/osa030/lyricpost/internal/app/history"
	"github.com/osa030/lyricpost/internal/app/links"
	"github.com/osa030/lyricpost/internal/app/lyricsearch"
	"github.com/osa030/lyricpost/internal/app/matching"
	"github.com/osa030/lyricpost/internal/app/publish"
	"github.com/osa030/lyricpost/internal/app/runner"
	"github.com/osa030/lyricpost/internal/domain/lyrics"
	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/config"
	"github.com/osa030/lyricpost/internal/infra/genius"
	"github.com/osa030/lyricpost/internal/infra/itunes"
	"github.com/osa030/lyricpost/internal/infra/lastfm"
	"github.com/osa030/lyricpost/internal/infra/logger"
	"github.com/osa030/lyricpost/internal/infra/retry"
	"github.com/osa030/lyricpost/internal/infra/spotify"
	"github.com/osa030/lyricpost/internal/infra/store"
	"github.com/osa030/lyricpost/internal/infra/telegram"
)

var (
	app        = kingpin.New("lyricpost", "Posts lyric excerpts of what you are listening to")
	configPath = app.Flag("config", "Path to config file").Default("config/lyricpost.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// run command (default)
	runCmd   = app.Command("run", "Check every user once and maybe post (default)").Default()
	force    = runCmd.Flag("force", "Ignore the odds and the same-play guard").Bool()
	dryRun   = runCmd.Flag("dry-run", "Log posts instead of sending them").Bool()
	onlyUser = runCmd.Flag("user", "Only process this user").String()

	// sample command
	sampleCmd    = app.Command("sample", "Print excerpts sampled from a local lyrics file")
	sampleFile   = sampleCmd.Arg("lyrics-file", "Lyrics text file").Required().ExistingFile()
	sampleArtist = sampleCmd.Flag("artist", "Artist name used to strip boilerplate").String()
	sampleTitle  = sampleCmd.Flag("title", "Song title used to strip boilerplate").String()
	sampleCount  = sampleCmd.Flag("count", "Number of excerpts to print").Default("5").Int()

	// history command
	historyCmd   = app.Command("history", "Print recent replay counts per user")
	historyLimit = historyCmd.Flag("limit", "Number of songs to print per user").Default("10").Int()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Debug().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case sampleCmd.FullCommand():
		err = sample(cfg)
	case historyCmd.FullCommand():
		err = printHistory(ctx, cfg)
	case listFiltersCmd.FullCommand():
		printFilters(cfg)
	default:
		err = run(ctx, cfg)
	}
	if err != nil {
		zlog.Error().Msgf("lyricpost error: %v", err)
		stop()
		os.Exit(1)
	}
}

// run checks every configured user once.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.NewRun()

	users := cfg.Users
	if *onlyUser != "" {
		u, ok := cfg.FindUser(*onlyUser)
		if !ok {
			return errors.Newf("unknown user: %s", *onlyUser)
		}
		users = []config.UserConfig{u}
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     retry.Exponential(time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond),
		Retryable:   retry.IsTransient,
	}

	historyStore, err := store.Open(cfg.History)
	if err != nil {
		return errors.Wrap(err, "failed to open history store")
	}
	defer historyStore.Close()

	geniusClient, err := genius.New(genius.Config{
		AccessToken:   cfg.Genius.AccessToken,
		ExcludedTerms: cfg.Genius.ExcludedTerms,
		Retry:         policy,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Genius client")
	}
	matcher := matching.NewMatcher(matching.Config{
		RequiredArtistScore: cfg.Matching.RequiredArtistScore,
		RequiredSongScore:   cfg.Matching.RequiredSongScore,
	}, log)

	var lastfmClient links.LastFmClient
	if cfg.LastFm.APIKey != "" {
		c, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFm.APIKey, APISecret: cfg.LastFm.APISecret})
		if err != nil {
			return errors.Wrap(err, "failed to create Last.fm client")
		}
		lastfmClient = c
	}
	linkChain, err := links.NewProviderChainFromConfig(cfg, lastfmClient, itunes.New())
	if err != nil {
		return errors.Wrap(err, "failed to create link providers")
	}

	filters, err := filter.NewChainFromConfig(cfg.Filters)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	rng := excerpt.NewSource()
	r := runner.New(runner.Deps{
		Store:   historyStore,
		Finder:  lyricsearch.NewFinder(geniusClient, matcher, log),
		Links:   linkChain,
		Filters: filters,
		Tracker: history.NewTracker(history.Config{
			MaxEntries:         cfg.History.MaxEntries,
			BaseChance:         cfg.Odds.ChanceToPost,
			ReplayReduceFactor: cfg.Odds.ReplayReduceFactor,
		}),
		Sampler:  excerpt.NewSampler(samplerConfig(cfg), rng),
		Stripper: boilerplate.NewStripper(),
		Rand:     rng,
	}, runner.Options{
		Force:   *force,
		NoRetry: cfg.NoRetryEnabled(),
	}, log)

	sinkFor, err := newSinkFactory(cfg, log)
	if err != nil {
		return err
	}

	runUsers := make([]runner.User, 0, len(users))
	for _, u := range users {
		player, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: u.RefreshToken,
			Retry:        policy,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create Spotify client for %s", u.Name)
		}
		runUsers = append(runUsers, runner.User{Name: u.Name, Player: player, Sink: sinkFor(u)})
	}

	return r.Run(ctx, runUsers)
}

// newSinkFactory returns the post destination of each user.
func newSinkFactory(cfg *config.Config, log zerolog.Logger) (func(config.UserConfig) publish.Sink, error) {
	if *dryRun || cfg.Post.Sink == "log" {
		sink := publish.NewLogSink(log)
		return func(config.UserConfig) publish.Sink { return sink }, nil
	}

	bot, err := telegram.NewBot(cfg.Telegram.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Telegram bot")
	}
	return func(u config.UserConfig) publish.Sink { return bot.Sink(u.TelegramChatID) }, nil
}

func samplerConfig(cfg *config.Config) excerpt.Config {
	return excerpt.Config{
		MaxLength:            cfg.Odds.PostLimit,
		ChanceToAddFirstLine: cfg.Odds.ChanceToAddFirstLine,
		ChanceToAddLine:      cfg.Odds.ChanceToAddLine,
	}
}

// sample prints excerpts drawn from a local lyrics file.
func sample(cfg *config.Config) error {
	data, err := os.ReadFile(*sampleFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", *sampleFile)
	}

	paragraphs := boilerplate.NewStripper().Strip(lyrics.SplitParagraphs(string(data)), *sampleArtist, *sampleTitle)
	doc := lyrics.NewDocument(paragraphs)
	sampler := excerpt.NewSampler(samplerConfig(cfg), excerpt.NewSource())

	for i := 0; i < *sampleCount; i++ {
		ex, ok := sampler.Sample(doc)
		if !ok {
			fmt.Println("No lines fit within the post limit.")
			return nil
		}
		fmt.Printf("--- paragraph %d, line %d, %d attempts ---\n", ex.Paragraph, ex.Start, ex.Attempts)
		fmt.Println(ex.Text())
	}
	return nil
}

// printHistory prints the most replayed songs of each user.
func printHistory(ctx context.Context, cfg *config.Config) error {
	historyStore, err := store.Open(cfg.History)
	if err != nil {
		return errors.Wrap(err, "failed to open history store")
	}
	defer historyStore.Close()

	tracker := history.NewTracker(history.Config{
		MaxEntries:         cfg.History.MaxEntries,
		BaseChance:         cfg.Odds.ChanceToPost,
		ReplayReduceFactor: cfg.Odds.ReplayReduceFactor,
	})

	for _, u := range cfg.Users {
		h, err := historyStore.Load(ctx, u.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to load history of %s", u.Name)
		}

		counts := make(map[track.Identity]int)
		for _, r := range h {
			counts[r.Identity()]++
		}
		ids := make([]track.Identity, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if counts[ids[i]] != counts[ids[j]] {
				return counts[ids[i]] > counts[ids[j]]
			}
			return ids[i].Title < ids[j].Title
		})

		fmt.Printf("%s: %d polls, %d songs\n", u.Name, len(h), len(ids))
		for i, id := range ids {
			if i >= *historyLimit {
				break
			}
			fmt.Printf("  %3d plays  1 in %-4d %s - %s\n", counts[id], tracker.Odds(counts[id]), id.Artist, id.Title)
		}
	}
	return nil
}

// printFilters prints available filters.
func printFilters(cfg *config.Config) {
	fmt.Println("Available Filters:")
	names := make([]string, 0, len(filter.GetRegistered()))
	for name := range filter.GetRegistered() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := filter.GetRegistered()[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		status := ""
		if cfg.IsFilterEnabled(name) {
			status = " (enabled)"
		}
		fmt.Printf("  %-30s - %s [codes: %s]%s\n", f.Name(), f.Description(), codes, status)
	}
}
