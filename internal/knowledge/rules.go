// Package knowledge generates the static reference files the service ships
// with: the Google snippet rule table and the schema.org type ontology.
package knowledge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RulesFile is the name of the rule table written by WriteRules.
const RulesFile = "google_rules.yml"

// GoogleRules are the length and structure guidelines for search snippets.
// Fields are declared in key order so the file lists keys sorted.
type GoogleRules struct {
	Description DescriptionRules `yaml:"description"`
	Headings    HeadingRules     `yaml:"headings"`
	Title       TitleRules       `yaml:"title"`
}

type TitleRules struct {
	KeywordsPosition string `yaml:"keywords_position"`
	MaxLength        int    `yaml:"max_length"`
	MinLength        int    `yaml:"min_length"`
}

type DescriptionRules struct {
	MaxLength int `yaml:"max_length"`
	MinLength int `yaml:"min_length"`
}

type HeadingRules struct {
	H1Count int `yaml:"h1_count"`
	H2Min   int `yaml:"h2_min"`
}

// DefaultGoogleRules returns the built-in rule table.
func DefaultGoogleRules() GoogleRules {
	return GoogleRules{
		Title:       TitleRules{MinLength: 30, MaxLength: 60, KeywordsPosition: "start"},
		Description: DescriptionRules{MinLength: 120, MaxLength: 160},
		Headings:    HeadingRules{H1Count: 1, H2Min: 2},
	}
}

// WriteRules writes rules to dir/google_rules.yml, creating dir if needed,
// and returns the path written.
func WriteRules(dir string, rules GoogleRules) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rules); err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	return writeFile(dir, RulesFile, buf.Bytes())
}

func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
