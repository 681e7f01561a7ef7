package dialogue

import (
	"context"
	"fmt"
	"strings"

	"voice-dialogue-go/internal/logger"
	"voice-dialogue-go/internal/lookup"
	"voice-dialogue-go/internal/session"
)

const (
	KeyResult = "result"
	KeyFilms  = "films"

	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultUnknown  = "unknown"

	// CounterSearches counts lookups made during the call.
	CounterSearches = "searches"
)

// Bot is the movie/series recommendation dialogue for one call.
type Bot struct {
	ctl      *session.Controller
	voice    *session.Voice
	searcher lookup.Searcher
	log      *logger.Logger
}

func New(ctl *session.Controller, voice *session.Voice, searcher lookup.Searcher, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.New()
	}
	return &Bot{
		ctl:      ctl,
		voice:    voice,
		searcher: searcher,
		log:      log.With("component", "dialogue"),
	}
}

// Entry returns the call entry point.
func (b *Bot) Entry() session.EntryPoint {
	return session.CheckCallState(b.start)
}

// AfterCall writes a one-line summary of the call to the audit log.
func (b *Bot) AfterCall(context.Context) error {
	store := b.ctl.Store()
	b.ctl.Log("call summary", fmt.Sprintf("%v %v", store.Value(session.KeyCallStatus), store.Value(KeyResult)))
	return nil
}

func (b *Bot) start(ctx context.Context) error {
	b.voice.Say("start_main")

	c, err := b.voice.Listen(ctx, session.ListenConfig{Entities: []string{"movie", "series"}})
	if err != nil {
		return err
	}
	if _, ok := c.Entity("movie"); ok {
		return b.movies(ctx)
	}
	if _, ok := c.Entity("series"); ok {
		return b.series(ctx)
	}

	b.log.WithField("utterance", c.Utterance()).Info("unknown request")
	b.ctl.Store().Set(KeyResult, ResultUnknown)
	b.voice.Say("unknown_command")
	return b.voice.EndCall()
}

func (b *Bot) movies(ctx context.Context) error {
	b.voice.Say("ask_movie_details")

	c, err := b.voice.Listen(ctx, session.ListenConfig{Entities: []string{"genres", "year", "rating"}})
	if err != nil {
		return err
	}
	titles := b.search(ctx, criteria(c), lookup.KindMovie)
	b.announce(titles, "Я нашёл фильмы: ", "no_movies_found")
	return b.voice.EndCall()
}

func (b *Bot) series(ctx context.Context) error {
	b.voice.Say("ask_tv_series_details")

	c, err := b.voice.Listen(ctx, session.ListenConfig{Entities: []string{"genres", "year"}})
	if err != nil {
		return err
	}
	titles := b.search(ctx, criteria(c), lookup.KindSeries)
	b.announce(titles, "Я нашёл сериалы: ", "no_series_found")
	return b.voice.EndCall()
}

func criteria(c *session.Capture) lookup.Criteria {
	var cr lookup.Criteria
	cr.Genre, _ = c.Entity("genres")
	cr.Year, _ = c.Entity("year")
	cr.Rating, _ = c.Entity("rating")
	return cr
}

// search skips the lookup when nothing was recognized.
func (b *Bot) search(ctx context.Context, cr lookup.Criteria, kind lookup.Kind) []string {
	if cr == (lookup.Criteria{}) {
		return nil
	}
	b.ctl.Counters().Apply(CounterSearches, session.Increment())
	return b.searcher.Search(ctx, cr, kind)
}

func (b *Bot) announce(titles []string, lead, emptyPrompt string) {
	store := b.ctl.Store()
	if len(titles) == 0 {
		store.SetMany(map[string]any{KeyResult: ResultNotFound, KeyFilms: []string{}})
		b.voice.Say(emptyPrompt)
		return
	}
	store.SetMany(map[string]any{KeyResult: ResultFound, KeyFilms: titles})
	b.voice.Synthesize(lead + strings.Join(titles, ", "))
}
