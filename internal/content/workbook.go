package content

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"voice-dialogue-go/internal/logger"
)

// Sheet names read by LoadWorkbook. Every sheet is optional.
const (
	SheetEntities = "entities"
	SheetPrompts  = "prompts"
	SheetStorage  = "storage"
	SheetOutput   = "output"
)

// LoadWorkbook reads tables from an xlsx file. Columns are detected by header
// heuristics; without a recognizable header the first row is treated as data.
//
//	entities: entity | flag | pattern   (patterns may be ";"-separated)
//	prompts:  key | text
//	storage:  key | value
//	output:   param
func LoadWorkbook(path string) (Tables, error) {
	log := logger.New().WithField("component", "content.workbook").WithField("path", path)
	f, err := excelize.OpenFile(path)
	if err != nil {
		log.WithError(err).Error("open failed")
		return Tables{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(name)] = true
	}
	rowsOf := func(sheet string) ([][]string, error) {
		if !sheets[sheet] {
			return nil, nil
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read %s rows: %w", sheet, err)
		}
		return rows, nil
	}

	var t Tables

	rows, err := rowsOf(SheetEntities)
	if err != nil {
		return Tables{}, err
	}
	t.Entities = parseEntityRows(rows)

	rows, err = rowsOf(SheetPrompts)
	if err != nil {
		return Tables{}, err
	}
	t.Prompts = Prompts{}
	for k, v := range parsePairRows(rows, "key", "text") {
		t.Prompts[k] = v
	}

	rows, err = rowsOf(SheetStorage)
	if err != nil {
		return Tables{}, err
	}
	t.Storage = parsePairRows(rows, "key", "value")

	rows, err = rowsOf(SheetOutput)
	if err != nil {
		return Tables{}, err
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		v := strings.TrimSpace(r[0])
		if v == "" || (i == 0 && strings.EqualFold(v, "param")) {
			continue
		}
		t.OutputParams = append(t.OutputParams, v)
	}

	log.WithField("entities", len(t.Entities)).WithField("prompts", len(t.Prompts)).Info("content workbook loaded")
	return withDefaults(t), nil
}

func parseEntityRows(rows [][]string) EntityTable {
	var table EntityTable
	if len(rows) == 0 {
		return table
	}
	entityIdx, flagIdx, patternIdx := 0, 1, 2
	start := 0
	header := false
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "entity"):
			entityIdx, header = i, true
		case strings.Contains(l, "flag"):
			flagIdx, header = i, true
		case strings.Contains(l, "pattern"):
			patternIdx, header = i, true
		}
	}
	if header {
		start = 1
	}
	for _, r := range rows[start:] {
		entity := cell(r, entityIdx)
		flag := cell(r, flagIdx)
		if entity == "" || flag == "" {
			continue
		}
		raw := cell(r, patternIdx)
		if raw == "" {
			table = table.Add(entity, flag, "")
			continue
		}
		for _, p := range strings.Split(raw, ";") {
			if p = strings.TrimSpace(p); p != "" {
				table = table.Add(entity, flag, p)
			}
		}
	}
	return table
}

func parsePairRows(rows [][]string, keyHeader, valueHeader string) map[string]string {
	out := map[string]string{}
	for i, r := range rows {
		k, v := cell(r, 0), cell(r, 1)
		if i == 0 && strings.EqualFold(k, keyHeader) && strings.EqualFold(v, valueHeader) {
			continue
		}
		if k != "" {
			out[k] = v
		}
	}
	return out
}

func cell(r []string, idx int) string {
	if idx >= 0 && idx < len(r) {
		return strings.TrimSpace(r[idx])
	}
	return ""
}
