package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"voice-dialogue-go/internal/content"
	"voice-dialogue-go/internal/logger"
)

func newTestVoice(utterances ...string) (*Voice, *Store) {
	store := NewStore()
	v := NewVoice(store, content.Default(), NewScriptedSource(utterances...), VoiceOptions{
		TestMode: true,
		Logger:   logger.Discard(),
	})
	return v, store
}

func TestVoice_Say(t *testing.T) {
	v, store := newTestVoice()
	if got := v.Say("hangup_goodbye"); got != "До свидания!" {
		t.Errorf("expected goodbye text, got %q", got)
	}
	if got := v.Say("missing_prompt"); got != "" {
		t.Errorf("expected empty text for missing prompt, got %q", got)
	}
	turns := store.Transcript()
	if len(turns) != 2 || turns[0] != (Turn{SpeakerBot, "До свидания!"}) || turns[1] != (Turn{SpeakerBot, ""}) {
		t.Errorf("unexpected transcript %+v", turns)
	}
}

func TestVoice_Synthesize(t *testing.T) {
	v, store := newTestVoice()
	if got := v.Synthesize("До свидания!"); got != "До свидания!" {
		t.Errorf("expected text back, got %q", got)
	}
	if store.Transcript()[0].Speaker != SpeakerBot {
		t.Error("expected bot turn")
	}
}

func TestVoice_RenderTypewriter(t *testing.T) {
	var out bytes.Buffer
	v := NewVoice(NewStore(), content.Default(), NewScriptedSource(), VoiceOptions{
		Output: &out,
		Logger: logger.Discard(),
	})
	v.Synthesize("Да!")

	want := "\rBOT: Д\rBOT: Да\rBOT: Да!\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestVoice_SetDefault(t *testing.T) {
	v, _ := newTestVoice()
	v.SetDefault(ParamListen, ListenConfig{Entities: []string{"horror"}})

	cfg, ok := v.Default(ParamListen)
	if !ok || !reflect.DeepEqual(cfg.Entities, []string{"horror"}) {
		t.Errorf("unexpected default %+v (%v)", cfg, ok)
	}
}

func TestVoice_OpenPrecedence(t *testing.T) {
	v, _ := newTestVoice()

	c := v.Open(ListenConfig{})
	if !reflect.DeepEqual(c.Config().Entities, content.Default().Entities.Names()) {
		t.Errorf("expected every entity by default, got %v", c.Config().Entities)
	}

	v.SetDefault(ParamListen, ListenConfig{Entities: []string{"horror"}, Timeout: time.Second})
	c = v.Open(ListenConfig{})
	if !reflect.DeepEqual(c.Config().Entities, []string{"horror"}) || c.Config().Timeout != time.Second {
		t.Errorf("expected stored default, got %+v", c.Config())
	}

	c = v.Open(ListenConfig{Entities: []string{"movie"}})
	if !reflect.DeepEqual(c.Config().Entities, []string{"movie"}) {
		t.Errorf("expected explicit entities to win, got %v", c.Config().Entities)
	}
	if c.Config().Timeout != time.Second {
		t.Errorf("expected default timeout to fill in, got %v", c.Config().Timeout)
	}
}

func TestVoice_EndCall(t *testing.T) {
	v, store := newTestVoice()
	err := v.EndCall()

	te, ok := AsTermination(err)
	if !ok {
		t.Fatalf("expected termination, got %v", err)
	}
	if te.Initiator != InitiatorBot {
		t.Errorf("expected bot initiator, got %s", te.Initiator)
	}
	turns := store.Transcript()
	if turns[len(turns)-1].Text != "До свидания!" {
		t.Errorf("expected goodbye as last turn, got %+v", turns)
	}
}

func TestCapture_Utterance(t *testing.T) {
	v, _ := newTestVoice("Привет!")
	c, err := v.Listen(context.Background(), ListenConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Utterance() != "привет" {
		t.Errorf("expected normalized utterance, got %q", c.Utterance())
	}
	if c.Raw() != "Привет!" {
		t.Errorf("expected raw utterance, got %q", c.Raw())
	}
}

func TestCapture_Entities(t *testing.T) {
	v, store := newTestVoice("Хочу посмотреть фильм")
	c, err := v.Listen(context.Background(), ListenConfig{Entities: []string{"movie", "series"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag, ok := c.Entity("movie"); !ok || flag != "true" {
		t.Errorf("expected movie=true, got %q (%v)", flag, ok)
	}
	if _, ok := c.Entity("series"); ok {
		t.Error("expected series to be absent")
	}
	if c.State() != CaptureResolved {
		t.Errorf("expected resolved state, got %v", c.State())
	}
	turns := store.Transcript()
	if len(turns) != 1 || turns[0] != (Turn{SpeakerHuman, "Хочу посмотреть фильм"}) {
		t.Errorf("expected raw human turn, got %+v", turns)
	}
}

func TestCapture_AllVersusFilteredEntities(t *testing.T) {
	utterance := "Ну не знаю, пусть будет сериал"

	v, _ := newTestVoice(utterance)
	c, _ := v.Listen(context.Background(), ListenConfig{})
	if flag, _ := c.Entity("dont_know"); flag != "true" {
		t.Errorf("expected dont_know=true, got %q", flag)
	}
	if flag, _ := c.Entity("series"); flag != "true" {
		t.Errorf("expected series=true, got %q", flag)
	}

	v, _ = newTestVoice(utterance)
	c, _ = v.Listen(context.Background(), ListenConfig{Entities: []string{"horror"}})
	for _, name := range []string{"dont_know", "series", "horror"} {
		if _, ok := c.Entity(name); ok {
			t.Errorf("expected %s to be absent", name)
		}
	}
}

func TestCapture_EmptyEntitiesMeansDefault(t *testing.T) {
	v, _ := newTestVoice("хочу фильм")
	c, err := v.Listen(context.Background(), ListenConfig{Entities: []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag, ok := c.Entity("movie"); !ok || flag != "true" {
		t.Errorf("expected movie=true, got %q (%v)", flag, ok)
	}

	v, _ = newTestVoice()
	v.SetDefault(ParamListen, ListenConfig{Entities: []string{"horror"}})
	if got := v.Open(ListenConfig{Entities: []string{}}).Config().Entities; !reflect.DeepEqual(got, []string{"horror"}) {
		t.Errorf("expected stored default for empty entities, got %v", got)
	}
}

func TestCapture_Hangup(t *testing.T) {
	for _, u := range []string{"hangup", "H!", " Hangup. "} {
		t.Run(u, func(t *testing.T) {
			v, store := newTestVoice(u, "unused")
			c, err := v.Listen(context.Background(), ListenConfig{Entities: []string{"movie"}})

			te, ok := AsTermination(err)
			if !ok {
				t.Fatalf("expected termination, got %v", err)
			}
			if te.Initiator != InitiatorHuman {
				t.Errorf("expected human initiator, got %s", te.Initiator)
			}
			if c.State() != CaptureTerminated {
				t.Errorf("expected terminated state, got %v", c.State())
			}
			if c.entities != nil {
				t.Error("entity recognition must not run after a hangup")
			}
			turns := store.Transcript()
			if len(turns) != 1 || turns[0].Text != u {
				t.Errorf("expected raw hangup turn appended, got %+v", turns)
			}
		})
	}
}

func TestCapture_CloseOnce(t *testing.T) {
	src := NewScriptedSource("фильм", "сериал")
	v := NewVoice(NewStore(), content.Default(), src, VoiceOptions{TestMode: true, Logger: logger.Discard()})
	c := v.Open(ListenConfig{})
	if err := c.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.Remaining() != 1 {
		t.Errorf("expected a single utterance consumed, %d remaining", src.Remaining())
	}
}

func TestCapture_SourceError(t *testing.T) {
	v, _ := newTestVoice()
	_, err := v.Listen(context.Background(), ListenConfig{})
	if !errors.Is(err, ErrUnexpectedFailure) || !errors.Is(err, ErrNoInput) {
		t.Errorf("expected unexpected failure wrapping ErrNoInput, got %v", err)
	}
	if IsTermination(err) {
		t.Error("source errors are not hangups")
	}
}

type blockingSource struct{}

func (blockingSource) Next(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestCapture_Timeout(t *testing.T) {
	v := NewVoice(NewStore(), content.Default(), blockingSource{}, VoiceOptions{TestMode: true, Logger: logger.Discard()})
	_, err := v.Listen(context.Background(), ListenConfig{Timeout: 10 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestConsoleSource(t *testing.T) {
	var prompt bytes.Buffer
	src := NewConsoleSource(strings.NewReader("Привет!\nhangup\n"), &prompt)

	first, err := src.Next(context.Background())
	if err != nil || first != "Привет!" {
		t.Fatalf("unexpected first line %q (%v)", first, err)
	}
	second, _ := src.Next(context.Background())
	if second != "hangup" {
		t.Errorf("unexpected second line %q", second)
	}
	for i := 0; i < 2; i++ {
		if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF after input ends, got %v", err)
		}
	}
	if !strings.HasPrefix(prompt.String(), "HUMAN: ") {
		t.Errorf("expected HUMAN prompt, got %q", prompt.String())
	}
}

func TestConsoleSource_LongLine(t *testing.T) {
	long := strings.Repeat("фильм ", 20000)
	src := NewConsoleSource(strings.NewReader(long+"\n"), nil)

	got, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != long {
		t.Errorf("expected %d bytes, got %d", len(long), len(got))
	}
}
