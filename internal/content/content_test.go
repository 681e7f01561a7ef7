package content

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestHasRecords(t *testing.T) {
	tables := Default()
	got := tables.HasRecords("hangup_hi", "hangup_goodbye")
	if !reflect.DeepEqual(got, []string{"hangup_hi"}) {
		t.Errorf("expected [hangup_hi], got %v", got)
	}

	tables.Prompts["recorded"] = map[string]any{"audio": "hello.wav"}
	got = tables.HasRecords("recorded", "start_main")
	if !reflect.DeepEqual(got, []string{"recorded"}) {
		t.Errorf("expected non-text prompt reported, got %v", got)
	}
}

func TestPromptsText(t *testing.T) {
	p := Prompts{"a": "text", "b": 42}
	if p.Text("a") != "text" {
		t.Errorf("expected text, got %q", p.Text("a"))
	}
	if p.Text("b") != "" || p.Text("missing") != "" {
		t.Error("expected empty text for non-text and missing prompts")
	}
}

func TestSecret(t *testing.T) {
	tables := Default()
	if v, ok := tables.Secret("BASE_URL"); !ok || v != "https://api.kinopoisk.dev/v1.4/movie" {
		t.Errorf("unexpected BASE_URL %q (%v)", v, ok)
	}
	if _, ok := tables.Secret("HOST"); ok {
		t.Error("expected HOST to be absent")
	}
}

func TestEntityTable_AddKeepsOrder(t *testing.T) {
	var table EntityTable
	table = table.Add("genres", "комедия", "комеди")
	table = table.Add("genres", "драма", "драм")
	table = table.Add("movie", "true", "фильм")
	table = table.Add("genres", "комедия", "смешн")

	if !reflect.DeepEqual(table.Names(), []string{"genres", "movie"}) {
		t.Fatalf("unexpected entity order %v", table.Names())
	}
	genres, ok := table.Lookup("genres")
	if !ok {
		t.Fatal("expected genres entity")
	}
	if genres.Flags[0].Name != "комедия" || genres.Flags[1].Name != "драма" {
		t.Errorf("unexpected flag order %+v", genres.Flags)
	}
	if !reflect.DeepEqual(genres.Flags[0].Patterns, []string{"комеди", "смешн"}) {
		t.Errorf("unexpected patterns %v", genres.Flags[0].Patterns)
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
entities:
  - name: movie
    flags:
      - name: "true"
        patterns: [фильм, кино]
  - name: rating
    flags:
      - name: "8-10"
        patterns: [высок]
      - name: "1-6"
        patterns: [низк]
prompts:
  hangup_goodbye: До свидания!
  greeting_record:
    audio: greeting.wav
storage:
  X-API-KEY: token
`
	tables, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tables.Entities.Names(), []string{"movie", "rating"}) {
		t.Errorf("unexpected entities %v", tables.Entities.Names())
	}
	rating, _ := tables.Entities.Lookup("rating")
	if rating.Flags[0].Name != "8-10" {
		t.Errorf("expected first flag 8-10, got %s", rating.Flags[0].Name)
	}
	if tables.Prompts.Text("hangup_goodbye") != "До свидания!" {
		t.Errorf("unexpected goodbye %q", tables.Prompts.Text("hangup_goodbye"))
	}
	if got := tables.HasRecords("greeting_record"); len(got) != 1 {
		t.Errorf("expected map prompt reported as non-text, got %v", got)
	}
	if key, _ := tables.Secret("X-API-KEY"); key != "token" {
		t.Errorf("expected token, got %q", key)
	}
	if !reflect.DeepEqual(tables.OutputParams, DefaultOutputParams()) {
		t.Errorf("expected default output params, got %v", tables.OutputParams)
	}
}

func TestParseYAML_UnknownField(t *testing.T) {
	if _, err := ParseYAML([]byte("nonsense: 1\n")); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestParseYAML_Empty(t *testing.T) {
	tables, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.Prompts == nil || tables.Storage == nil {
		t.Error("expected empty maps, got nil")
	}
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.xlsx")
	f := excelize.NewFile()
	rows := map[string][][]interface{}{
		SheetEntities: {
			{"entity", "flag", "pattern"},
			{"movie", "true", "фильм; кино"},
			{"series", "true", "сериал"},
			{"genres", "комедия", "комеди"},
			{"genres", "драма", "драм"},
		},
		SheetPrompts: {
			{"key", "text"},
			{"hangup_goodbye", "До свидания!"},
		},
		SheetStorage: {
			{"X-API-KEY", "token"},
		},
		SheetOutput: {
			{"param"},
			{"msisdn"},
			{"call_status"},
		},
	}
	for _, sheet := range []string{SheetEntities, SheetPrompts, SheetStorage, SheetOutput} {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for i, row := range rows[sheet] {
			cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
			r := row
			if err := f.SetSheetRow(sheet, cellRef, &r); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	tables, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tables.Entities.Names(), []string{"movie", "series", "genres"}) {
		t.Errorf("unexpected entities %v", tables.Entities.Names())
	}
	movie, _ := tables.Entities.Lookup("movie")
	if !reflect.DeepEqual(movie.Flags[0].Patterns, []string{"фильм", "кино"}) {
		t.Errorf("unexpected movie patterns %v", movie.Flags[0].Patterns)
	}
	if tables.Prompts.Text("hangup_goodbye") != "До свидания!" {
		t.Errorf("unexpected goodbye %q", tables.Prompts.Text("hangup_goodbye"))
	}
	if key, _ := tables.Secret("X-API-KEY"); key != "token" {
		t.Errorf("expected token, got %q", key)
	}
	if !reflect.DeepEqual(tables.OutputParams, []string{"msisdn", "call_status"}) {
		t.Errorf("unexpected output params %v", tables.OutputParams)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadOrDefault_Empty(t *testing.T) {
	tables, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tables.Entities.Lookup("movie"); !ok {
		t.Error("expected default tables")
	}
}
