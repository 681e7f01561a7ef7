package session

import (
	"context"
	"fmt"

	"voice-dialogue-go/internal/metrics"
	"voice-dialogue-go/internal/nlu"
)

type CaptureState int

const (
	CaptureOpen CaptureState = iota
	CaptureResolved
	CaptureTerminated
	CaptureFailed
)

// Capture is one caller turn: opened by Voice.Open, then Close reads the
// utterance and resolves entities. Close runs its work exactly once.
type Capture struct {
	voice     *Voice
	cfg       ListenConfig
	state     CaptureState
	raw       string
	utterance string
	entities  nlu.Result
	err       error
}

func (c *Capture) State() CaptureState {
	return c.state
}

func (c *Capture) Config() ListenConfig {
	return c.cfg
}

// Close reads one utterance, appends it to the transcript and recognizes
// the requested entities. A hangup utterance is appended and then returned
// as a TerminationError with no entity recognition.
func (c *Capture) Close(ctx context.Context) error {
	if c.state != CaptureOpen {
		return c.err
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	raw, err := c.voice.source.Next(ctx)
	if err != nil {
		c.state = CaptureFailed
		c.err = fmt.Errorf("%w: listen: %w", ErrUnexpectedFailure, err)
		return c.err
	}
	metrics.ObserveUtterance()

	c.raw = raw
	c.utterance = nlu.Normalize(raw)
	c.voice.store.AppendTurn(SpeakerHuman, raw)

	if nlu.IsHangup(c.utterance) {
		c.state = CaptureTerminated
		c.err = Hangup(InitiatorHuman)
		return c.err
	}

	c.entities = c.voice.recognizer.Recognize(raw, c.cfg.Entities)
	c.state = CaptureResolved
	return nil
}

// Entity returns the flag recognized for name. It is absent when name was
// not requested, did not match, or the capture is not resolved.
func (c *Capture) Entity(name string) (string, bool) {
	return c.entities.Entity(name)
}

// Utterance returns the normalized caller text.
func (c *Capture) Utterance() string {
	return c.utterance
}

// Raw returns the caller text as received.
func (c *Capture) Raw() string {
	return c.raw
}
