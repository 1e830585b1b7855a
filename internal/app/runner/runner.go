// Package runner drives one invocation: for every user it checks what is
// playing, updates the play history and, when the odds allow, posts a lyric excerpt.
package runner

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/lyricpost/internal/app/boilerplate"
	"github.com/osa030/lyricpost/internal/app/excerpt"
	"github.com/osa030/lyricpost/internal/app/filter"
	"github.com/osa030/lyricpost/internal/app/history"
	"github.com/osa030/lyricpost/internal/app/links"
	"github.com/osa030/lyricpost/internal/app/lyricsearch"
	"github.com/osa030/lyricpost/internal/app/publish"
	"github.com/osa030/lyricpost/internal/domain/lyrics"
	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/logger"
	"github.com/osa030/lyricpost/internal/infra/retry"
)

// Outcome describes how far a user's pipeline got.
type Outcome string

const (
	OutcomeIdle           Outcome = "idle"
	OutcomeUnreachable    Outcome = "unreachable"
	OutcomeSamePlay       Outcome = "same_play"
	OutcomeLyricsNotFound Outcome = "lyrics_not_found"
	OutcomeNoParagraphs   Outcome = "no_paragraphs"
	OutcomeLostRoll       Outcome = "lost_roll"
	OutcomeNoExcerpt      Outcome = "no_excerpt"
	OutcomeFiltered       Outcome = "filtered"
	OutcomePosted         Outcome = "posted"
)

// Player reports what a user is playing. A nil snapshot means nothing is playing.
type Player interface {
	CurrentlyPlaying(ctx context.Context) (*track.NowPlaying, error)
}

// HistoryStore persists play history per user.
type HistoryStore interface {
	Load(ctx context.Context, user string) (track.History, error)
	Save(ctx context.Context, user string, h track.History) error
}

// LyricsFinder resolves a track to its lyrics.
type LyricsFinder interface {
	Find(ctx context.Context, id track.Identity) (*lyrics.Song, error)
}

// LinkCollector finds cross-reference links for a posted song.
type LinkCollector interface {
	Collect(ctx context.Context, song track.NowPlaying) []links.Link
}

// User is one listener with their own player and destination.
type User struct {
	Name   string
	Player Player
	Sink   publish.Sink
}

// Options changes the posting policy for a run.
type Options struct {
	// Force ignores the odds and the same-play guard.
	Force bool
	// NoRetry skips the roll while the same play continues.
	NoRetry bool
}

// Deps are the collaborators shared by every user.
type Deps struct {
	Store    HistoryStore
	Finder   LyricsFinder
	Links    LinkCollector
	Filters  *filter.Chain
	Tracker  *history.Tracker
	Sampler  *excerpt.Sampler
	Stripper *boilerplate.Stripper
	Rand     excerpt.Source
}

// Runner processes users sequentially.
type Runner struct {
	deps    Deps
	options Options
	logger  zerolog.Logger
}

// New creates a new runner.
func New(deps Deps, options Options, log zerolog.Logger) *Runner {
	if deps.Filters == nil {
		deps.Filters = filter.NewChain()
	}
	if deps.Stripper == nil {
		deps.Stripper = boilerplate.NewStripper()
	}
	return &Runner{deps: deps, options: options, logger: log}
}

// Run processes every user. A failure (or panic) of one user does not stop
// the others; the failures are combined into the returned error.
func (r *Runner) Run(ctx context.Context, users []User) error {
	var combined error
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return errors.CombineErrors(combined, err)
		}

		outcome, err := r.safeRunUser(ctx, u)
		log := logger.ForUser(r.logger, u.Name)
		if err != nil {
			log.Error().Err(err).Msg("user run failed")
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "user %s", u.Name))
			continue
		}
		log.Debug().Msgf("user run finished: outcome=%s", outcome)
	}
	return combined
}

func (r *Runner) safeRunUser(ctx context.Context, u User) (outcome Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf("panic: %v", p)
		}
	}()
	return r.RunUser(ctx, u)
}

// RunUser runs the pipeline for one user.
func (r *Runner) RunUser(ctx context.Context, u User) (Outcome, error) {
	log := logger.ForUser(r.logger, u.Name)

	np, err := u.Player.CurrentlyPlaying(ctx)
	if errors.Is(err, retry.ErrExhausted) {
		log.Warn().Err(err).Msg("player unreachable, skipping this poll")
		return OutcomeUnreachable, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get currently playing track")
	}
	if !np.Playable() {
		log.Debug().Msg("not playing a song currently")
		return OutcomeIdle, nil
	}
	log.Info().Msgf("playing %s by %s", np.Title, np.Artist)

	h, err := r.deps.Store.Load(ctx, u.Name)
	if err != nil {
		return "", errors.Wrap(err, "failed to load history")
	}

	cur := np.Record()
	cls := history.Classify(h, cur)
	h = r.deps.Tracker.Record(h, cur, cls)
	if err := r.deps.Store.Save(ctx, u.Name, h); err != nil {
		return "", errors.Wrap(err, "failed to save history")
	}
	log.Debug().Msgf("poll classified as %s", cls)

	if cls == history.SamePlay && r.options.NoRetry && !r.options.Force {
		log.Info().Msg("already rolled for this play")
		return OutcomeSamePlay, nil
	}

	id := np.Identity()
	song, err := r.deps.Finder.Find(ctx, id)
	if err != nil {
		if errors.Is(err, lyricsearch.ErrNotFound) {
			log.Info().Msg("song not found on genius")
			return OutcomeLyricsNotFound, nil
		}
		return "", err
	}

	paragraphs := lyrics.SplitParagraphs(song.Lyrics)
	if len(paragraphs) == 0 {
		log.Info().Msg("no paragraphs")
		return OutcomeNoParagraphs, nil
	}
	doc := lyrics.NewDocument(r.deps.Stripper.Strip(paragraphs, np.Artist, np.Title))

	replays := history.ReplayCount(h, id)
	odds := r.deps.Tracker.Odds(replays)
	if replays > 0 {
		log.Info().Msgf("song played %d times recently, odds reduced to 1 in %d", replays, odds)
	}
	if !r.options.Force && !r.deps.Tracker.Roll(r.deps.Rand, odds) {
		log.Info().Msgf("failed roll: 1 in %d", odds)
		return OutcomeLostRoll, nil
	}

	ex, ok := r.deps.Sampler.Sample(doc)
	if !ok {
		log.Info().Msg("no lines fit within the post limit")
		return OutcomeNoExcerpt, nil
	}
	text := ex.Text()

	if result := r.deps.Filters.Execute(ctx, filter.Candidate{Track: id, Lines: ex.Lines, Text: text}); !result.Accepted {
		log.Info().Msgf("skipping post, rejected by filter: code=%s\n%s", result.Code, text)
		return OutcomeFiltered, nil
	}

	log.Info().Msgf("posting:\n%s", text)
	postID, err := u.Sink.Post(ctx, text)
	if err != nil {
		return "", errors.Wrap(err, "failed to post excerpt")
	}

	var found []links.Link
	if r.deps.Links != nil {
		found = r.deps.Links.Collect(ctx, *np)
	}
	if _, err := u.Sink.Reply(ctx, postID, links.FormatReply(song.URL, found)); err != nil {
		log.Warn().Err(err).Msg("failed to post links reply")
	}

	// Replays are forgotten so the song starts again at full odds.
	h = r.deps.Tracker.ResetAfterPost(h, cur)
	if err := r.deps.Store.Save(ctx, u.Name, h); err != nil {
		return OutcomePosted, errors.Wrap(err, "failed to save history after post")
	}
	return OutcomePosted, nil
}
