package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"voice-dialogue-go/internal/content"
	"voice-dialogue-go/internal/logger"
	"voice-dialogue-go/internal/nlu"
)

// ParamListen is the SetDefault key for listen configuration.
const ParamListen = "listen"

const promptGoodbye = "hangup_goodbye"

// ListenConfig configures one capture. Zero or empty fields fall through to the
// stored default, then to the built-in one (every entity, no timeout).
type ListenConfig struct {
	Entities []string
	Timeout  time.Duration
}

func (c ListenConfig) merge(fallback ListenConfig) ListenConfig {
	if len(c.Entities) == 0 {
		c.Entities = fallback.Entities
	}
	if c.Timeout == 0 {
		c.Timeout = fallback.Timeout
	}
	return c
}

type VoiceOptions struct {
	TestMode bool
	// Output receives rendered bot and prompt text outside test mode.
	Output io.Writer
	// RevealDelay is the per-character delay of the typewriter rendering.
	RevealDelay time.Duration
	Logger      *logger.Logger
}

// Voice emits bot speech into the transcript and opens captures for caller
// input. One Voice belongs to one call.
type Voice struct {
	store      *Store
	prompts    content.Prompts
	recognizer *nlu.Recognizer
	source     UtteranceSource
	opts       VoiceOptions
	defaults   map[string]ListenConfig
	log        *logger.Logger
}

func NewVoice(store *Store, tables content.Tables, source UtteranceSource, opts VoiceOptions) *Voice {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logger.New()
	}
	return &Voice{
		store:      store,
		prompts:    tables.Prompts,
		recognizer: nlu.NewRecognizer(tables.Entities),
		source:     source,
		opts:       opts,
		defaults:   map[string]ListenConfig{},
		log:        opts.Logger.With("component", "voice"),
	}
}

// Say speaks the prompt stored under key; a missing prompt is spoken as "".
func (v *Voice) Say(key string) string {
	return v.emit(v.prompts.Text(key))
}

// Synthesize speaks text as is.
func (v *Voice) Synthesize(text string) string {
	return v.emit(text)
}

func (v *Voice) emit(text string) string {
	v.store.AppendTurn(SpeakerBot, text)
	if !v.opts.TestMode {
		v.render(SpeakerBot, text)
	}
	return text
}

// render reveals text one character at a time on a single console line.
func (v *Voice) render(who Speaker, text string) {
	label := strings.ToUpper(string(who))
	runes := []rune(text)
	for i := range runes {
		fmt.Fprintf(v.opts.Output, "\r%s: %s", label, string(runes[:i+1]))
		if v.opts.RevealDelay > 0 {
			time.Sleep(v.opts.RevealDelay)
		}
	}
	fmt.Fprintln(v.opts.Output)
}

func (v *Voice) SetDefault(param string, cfg ListenConfig) {
	v.defaults[param] = cfg
}

func (v *Voice) Default(param string) (ListenConfig, bool) {
	cfg, ok := v.defaults[param]
	return cfg, ok
}

// Open starts a capture. Precedence: cfg, then the stored listen default,
// then every entity of the table.
func (v *Voice) Open(cfg ListenConfig) *Capture {
	cfg = cfg.merge(v.defaults[ParamListen])
	if len(cfg.Entities) == 0 {
		cfg.Entities = v.recognizer.Table().Names()
	}
	return &Capture{voice: v, cfg: cfg}
}

// Listen opens a capture and closes it right away, waiting for one
// utterance. The returned error is the Close error.
func (v *Voice) Listen(ctx context.Context, cfg ListenConfig) (*Capture, error) {
	c := v.Open(cfg)
	return c, c.Close(ctx)
}

// EndCall says goodbye and returns the bot hangup signal.
func (v *Voice) EndCall() error {
	v.Say(promptGoodbye)
	return v.Hangup()
}

func (v *Voice) Hangup() error {
	v.log.Debug("bot hangup")
	return Hangup(InitiatorBot)
}
