package session

import (
	"bytes"
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"time"

	"voice-dialogue-go/internal/logger"
)

const auditTimeFormat = "2006-01-02 15:04:05.000000"

// Entry is one audit line as passed by its caller.
type Entry struct {
	Caller string
	Tag    string
	Detail string
}

// Fields returns the non-empty parts of the entry in line order.
func (e Entry) Fields() []string {
	out := []string{}
	for _, s := range []string{e.Caller, e.Tag, e.Detail} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AuditLog is the per-call text artifact. The file is opened and closed on
// every operation so lines written before a crash stay on disk. Write
// failures are reported to the diagnostic logger and otherwise ignored.
type AuditLog struct {
	path     string
	testMode bool
	now      func() time.Time
	log      *logger.Logger
}

func NewAuditLog(path string, testMode bool, log *logger.Logger) *AuditLog {
	if log == nil {
		log = logger.New()
	}
	return &AuditLog{
		path:     path,
		testMode: testMode,
		now:      time.Now,
		log:      log.With("component", "audit"),
	}
}

func (a *AuditLog) Path() string {
	return a.path
}

// Reset truncates the log. No-op in test mode.
func (a *AuditLog) Reset() {
	if a.testMode {
		return
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		a.log.WithError(err).Warn("audit reset failed")
		return
	}
	if err := f.Close(); err != nil {
		a.log.WithError(err).Warn("audit reset failed")
	}
}

// Append writes "<timestamp> - <caller> - <tag>[ - <detail>]", where caller
// is the function that called Append. In test mode nothing is written and
// the entry is only returned.
func (a *AuditLog) Append(tag, detail string) Entry {
	return a.write(callerName(2), tag, detail)
}

func (a *AuditLog) write(caller, tag, detail string) Entry {
	e := Entry{Caller: caller, Tag: tag, Detail: detail}
	if a.testMode {
		return e
	}
	parts := append([]string{a.now().Format(auditTimeFormat)}, e.Fields()...)
	a.appendRaw("\n" + strings.Join(parts, " - "))
	return e
}

// WriteDump appends the final dump block. No-op in test mode.
func (a *AuditLog) WriteDump(d Dump) {
	if a.testMode {
		return
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		a.log.WithError(err).Warn("dump encode failed")
		return
	}
	a.appendRaw("\n\nDUMP:\n" + strings.TrimRight(buf.String(), "\n"))
}

func (a *AuditLog) appendRaw(s string) {
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		a.log.WithError(err).Warn("audit append failed")
		return
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		a.log.WithError(err).Warn("audit append failed")
	}
}

// callerName returns the short name of the function skip frames above
// callerName itself: package path and receiver are dropped, closures keep
// their ".funcN" suffix.
func callerName(skip int) string {
	pcs := make([]uintptr, skip+8)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	name := ""
	for i := 0; ; i++ {
		f, more := frames.Next()
		if i == skip {
			name = f.Function
			break
		}
		if !more {
			break
		}
	}
	if name == "" {
		return "unknown"
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasPrefix(name, "(") {
		if i := strings.Index(name, ")."); i >= 0 {
			name = name[i+2:]
		}
	}
	return name
}
