// Package content holds the static tables a call reads: entity patterns,
// prompt texts, opaque storage (credentials, urls) and the list of fields
// that make up the final call dump.
package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported content format")

// Flag is one recognizable value of an entity together with the literal
// substrings that select it.
type Flag struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type Entity struct {
	Name  string `yaml:"name"`
	Flags []Flag `yaml:"flags"`
}

// EntityTable keeps entities and their flags in declaration order. Order
// matters: the first matching flag wins.
type EntityTable []Entity

func (t EntityTable) Lookup(name string) (Entity, bool) {
	for _, e := range t {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

func (t EntityTable) Names() []string {
	names := make([]string, 0, len(t))
	for _, e := range t {
		names = append(names, e.Name)
	}
	return names
}

// Add appends pattern to entity/flag, creating either one at the end of the
// table when it is seen for the first time.
func (t EntityTable) Add(entity, flag, pattern string) EntityTable {
	ei := -1
	for i := range t {
		if t[i].Name == entity {
			ei = i
			break
		}
	}
	if ei == -1 {
		t = append(t, Entity{Name: entity})
		ei = len(t) - 1
	}
	fi := -1
	for i := range t[ei].Flags {
		if t[ei].Flags[i].Name == flag {
			fi = i
			break
		}
	}
	if fi == -1 {
		t[ei].Flags = append(t[ei].Flags, Flag{Name: flag})
		fi = len(t[ei].Flags) - 1
	}
	if pattern != "" {
		t[ei].Flags[fi].Patterns = append(t[ei].Flags[fi].Patterns, pattern)
	}
	return t
}

// Prompts maps symbolic names to prompt values. A value is usually text;
// anything else (a recording reference, a nested map) is not speakable.
type Prompts map[string]any

// Text returns the prompt text, or "" when the key is missing or not text.
func (p Prompts) Text(key string) string {
	s, _ := p[key].(string)
	return s
}

type Tables struct {
	Entities     EntityTable
	Prompts      Prompts
	Storage      map[string]string
	OutputParams []string
}

// HasRecords returns the names among the given ones whose prompt is absent
// or not text.
func (t Tables) HasRecords(names ...string) []string {
	missing := []string{}
	for _, name := range names {
		if _, ok := t.Prompts[name].(string); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Secret looks up an opaque storage value.
func (t Tables) Secret(key string) (string, bool) {
	v, ok := t.Storage[key]
	return v, ok
}

// Load reads tables from a YAML or xlsx file, picked by extension.
func Load(path string) (Tables, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".xlsx":
		return LoadWorkbook(path)
	default:
		return Tables{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadOrDefault returns Default() for an empty path.
func LoadOrDefault(path string) (Tables, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func withDefaults(t Tables) Tables {
	if t.Prompts == nil {
		t.Prompts = Prompts{}
	}
	if t.Storage == nil {
		t.Storage = map[string]string{}
	}
	if len(t.OutputParams) == 0 {
		t.OutputParams = DefaultOutputParams()
	}
	return t
}
