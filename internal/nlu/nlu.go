// Package nlu turns a caller utterance into entity flags by literal,
// case-insensitive substring matching over a content.EntityTable.
package nlu

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"voice-dialogue-go/internal/content"
)

var punctuation = strings.NewReplacer("?", "", "!", "", ",", "", ".", "")

func lower(s string) string {
	// cases.Caser keeps state, one per call.
	return cases.Lower(language.Und).String(s)
}

// Normalize strips ? ! , . then trims and lowercases.
func Normalize(utterance string) string {
	return lower(strings.TrimSpace(punctuation.Replace(utterance)))
}

// IsHangup reports whether a normalized utterance is a caller hangup.
func IsHangup(normalized string) bool {
	return normalized == "h" || normalized == "hangup"
}

// Result maps entity name to the recognized flag.
type Result map[string]string

// Entity returns the flag for name and whether one was recognized.
func (r Result) Entity(name string) (string, bool) {
	flag, ok := r[name]
	return flag, ok
}

type Recognizer struct {
	table content.EntityTable
}

func NewRecognizer(table content.EntityTable) *Recognizer {
	return &Recognizer{table: table}
}

func (r *Recognizer) Table() content.EntityTable {
	return r.table
}

// Recognize scans every requested entity's flags in table order and keeps the
// first flag with a pattern contained in the raw utterance. Unknown entity
// names are ignored. A nil request means every entity in the table.
func (r *Recognizer) Recognize(raw string, requested []string) Result {
	if requested == nil {
		requested = r.table.Names()
	}
	text := lower(raw)
	out := Result{}
	for _, name := range requested {
		if _, done := out[name]; done {
			continue
		}
		entity, ok := r.table.Lookup(name)
		if !ok {
			continue
		}
		if flag, ok := matchFlag(entity, text); ok {
			out[name] = flag
		}
	}
	return out
}

func matchFlag(entity content.Entity, text string) (string, bool) {
	for _, flag := range entity.Flags {
		for _, p := range flag.Patterns {
			if p == "" {
				continue
			}
			if strings.Contains(text, lower(p)) {
				return flag.Name, true
			}
		}
	}
	return "", false
}
