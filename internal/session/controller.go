// Package session runs one voice call: it owns the call environment, the
// counters and the audit log, drives the dialogue entry point and always
// produces the final dump, however the call ended.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"voice-dialogue-go/internal/content"
	"voice-dialogue-go/internal/logger"
	"voice-dialogue-go/internal/metrics"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFail    Status = "FAIL"
)

// EntryPoint is the dialogue of a call. Its return value is the only thing
// the Controller inspects.
type EntryPoint func(ctx context.Context) error

// AfterCall runs once the call is classified. Its failures are logged and
// never change the dump.
type AfterCall func(ctx context.Context) error

type OutcomeKind string

const (
	OutcomeCompleted  OutcomeKind = "completed"
	OutcomeTerminated OutcomeKind = "terminated"
	OutcomeFailed     OutcomeKind = "failed"
)

// Outcome is how the entry point ended.
type Outcome struct {
	Kind      OutcomeKind
	Initiator Initiator
	Reason    string
}

// Dump is the final call snapshot: one entry per output parameter, nil for
// parameters never set.
type Dump map[string]any

type Options struct {
	// TestMode keeps the call hermetic: no audit file, no rendering delay.
	TestMode     bool
	AuditLogPath string
	Tables       content.Tables
	Logger       *logger.Logger
	Now          func() time.Time
	NewUUID      func() string
}

// CheckCallState wraps an entry point: hangup signals pass through
// untouched, any other error comes back as ErrUnexpectedFailure.
func CheckCallState(next EntryPoint) EntryPoint {
	return func(ctx context.Context) error {
		err := next(ctx)
		if err == nil || IsTermination(err) {
			return err
		}
		if errors.Is(err, ErrUnexpectedFailure) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnexpectedFailure, err)
	}
}

type Controller struct {
	opts     Options
	store    *Store
	counters *Counters
	audit    *AuditLog
	log      *logger.Logger
	outcome  Outcome
	called   bool
}

func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logger.New()
	}
	if opts.AuditLogPath == "" {
		opts.AuditLogPath = "logs.txt"
	}
	if opts.Tables.OutputParams == nil {
		opts.Tables.OutputParams = content.DefaultOutputParams()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewUUID == nil {
		opts.NewUUID = uuid.NewString
	}
	log := opts.Logger.With("component", "session")
	return &Controller{
		opts:     opts,
		store:    NewStore(),
		counters: NewCounters(),
		audit:    NewAuditLog(opts.AuditLogPath, opts.TestMode, log),
		log:      log,
	}
}

func (c *Controller) Store() *Store {
	return c.store
}

func (c *Controller) Counters() *Counters {
	return c.counters
}

func (c *Controller) Audit() *AuditLog {
	return c.audit
}

func (c *Controller) Outcome() Outcome {
	return c.outcome
}

func (c *Controller) Tables() content.Tables {
	return c.opts.Tables
}

// Log appends to the audit log on behalf of the function calling Log.
func (c *Controller) Log(tag, detail string) Entry {
	return c.audit.write(callerName(2), tag, detail)
}

// HasRecords returns the prompt names that have no text.
func (c *Controller) HasRecords(names ...string) []string {
	return c.opts.Tables.HasRecords(names...)
}

// Storage reads an opaque value (credentials, urls) from the content tables.
func (c *Controller) Storage(key string) (string, bool) {
	return c.opts.Tables.Secret(key)
}

// NewVoice builds the voice port of this call, sharing its store.
func (c *Controller) NewVoice(source UtteranceSource, output io.Writer, revealDelay time.Duration) *Voice {
	return NewVoice(c.store, c.opts.Tables, source, VoiceOptions{
		TestMode:    c.opts.TestMode,
		Output:      output,
		RevealDelay: revealDelay,
		Logger:      c.log,
	})
}

// Call runs one call and returns its dump. Nothing the entry point or the
// after-call hook does, panics included, prevents the dump. A Controller runs
// a single call: later invocations return a FAIL dump and leave the first
// call's state and audit log untouched.
func (c *Controller) Call(ctx context.Context, msisdn string, entry EntryPoint, after AfterCall) Dump {
	if c.called {
		return c.reject(msisdn)
	}
	c.called = true
	c.audit.Reset()
	if c.opts.TestMode {
		c.audit.Append("=== TEST STARTED ===", "")
	} else {
		c.audit.Append("=== CALL STARTED ===", "")
	}

	err := c.start(ctx, msisdn, entry)
	c.classify(err)

	if c.opts.TestMode {
		c.audit.Append("=== TEST FINISHED ===", "")
	} else {
		c.audit.Append("=== CALL FINISHED ===", "")
	}

	if after != nil {
		if err := guard(ctx, after); err != nil {
			c.audit.Append("after call failed", err.Error())
			c.log.WithError(err).Warn("after call hook failed")
		}
	}
	return c.Dump()
}

func (c *Controller) reject(msisdn string) Dump {
	err := fmt.Errorf("%w: controller already ran a call", ErrInvalidUsage)
	c.log.WithError(err).WithField("rejected_msisdn", msisdn).Error("call rejected")
	metrics.ObserveCall(string(StatusFail))
	out := Dump{}
	for _, k := range c.opts.Tables.OutputParams {
		out[k] = nil
	}
	out[KeyCallStatus] = StatusFail
	return out
}

func (c *Controller) start(ctx context.Context, msisdn string, entry EntryPoint) error {
	if msisdn == "" {
		return fmt.Errorf("%w: msisdn is empty", ErrInvalidInput)
	}
	if entry == nil {
		return fmt.Errorf("%w: entry point is nil", ErrInvalidInput)
	}
	callUUID := c.opts.NewUUID()
	c.store.SetMany(map[string]any{
		KeyMsisdn:        msisdn,
		KeyCallUUID:      callUUID,
		KeyCallStartTime: c.opts.Now().Format(auditTimeFormat),
	})
	c.log = c.log.WithCall(msisdn, callUUID)
	c.log.Info("call started")
	return guard(ctx, entry)
}

func (c *Controller) classify(err error) {
	if err == nil {
		c.outcome = Outcome{Kind: OutcomeCompleted}
		c.store.Set(KeyCallStatus, StatusSuccess)
		metrics.ObserveCall(string(StatusSuccess))
		c.log.Info("call completed")
		return
	}
	if te, ok := AsTermination(err); ok {
		c.outcome = Outcome{Kind: OutcomeTerminated, Initiator: te.Initiator, Reason: te.Reason}
		c.audit.Append("call terminated", te.Reason)
		c.store.Set(KeyHangupInitiator, string(te.Initiator))
		c.store.Set(KeyCallStatus, StatusSuccess)
		metrics.ObserveTermination(string(te.Initiator))
		metrics.ObserveCall(string(StatusSuccess))
		c.log.WithField("initiator", te.Initiator).Info("call terminated")
		return
	}
	c.outcome = Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	c.audit.Append("entry point failed", err.Error())
	c.store.Set(KeyCallStatus, StatusFail)
	metrics.ObserveCall(string(StatusFail))
	c.log.WithError(err).Error("call failed")
}

// Dump snapshots the output parameters. Outside test mode the snapshot is
// also appended to the audit log.
func (c *Controller) Dump() Dump {
	out := Dump{}
	for _, k := range c.opts.Tables.OutputParams {
		out[k] = copyValue(c.store.Value(k))
	}
	c.audit.WriteDump(out)
	return out
}

// copyValue copies slices and maps so the dump does not alias the store.
func copyValue(v any) any {
	switch t := v.(type) {
	case []Turn:
		return append([]Turn(nil), t...)
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copyValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	}
	return v
}

// guard runs fn, turning a panic into ErrUnexpectedFailure.
func guard[F ~func(context.Context) error](ctx context.Context, fn F) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = unexpected("panic: %v", r)
		}
	}()
	return fn(ctx)
}
