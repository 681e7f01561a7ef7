package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Entities     EntityTable       `yaml:"entities"`
	Prompts      map[string]any    `yaml:"prompts"`
	Storage      map[string]string `yaml:"storage"`
	OutputParams []string          `yaml:"output_params"`
}

// LoadYAML reads tables from a YAML document:
//
//	entities:
//	  - name: movie
//	    flags:
//	      - name: "true"
//	        patterns: [фильм, кино]
//	prompts:
//	  hangup_goodbye: До свидания!
//	storage:
//	  X-API-KEY: ...
//	output_params: [msisdn, call_status]
func LoadYAML(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read content: %w", err)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (Tables, error) {
	var f yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, fmt.Errorf("parse content: %w", err)
	}
	return withDefaults(Tables{
		Entities:     f.Entities,
		Prompts:      Prompts(f.Prompts),
		Storage:      f.Storage,
		OutputParams: f.OutputParams,
	}), nil
}
