package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// Source kinds
const (
	SourceKindBrowser = "browser"
	SourceKindHTML    = "html"
)

// SelectorSet is the CSS contract a source page must satisfy
type SelectorSet struct {
	Ready         string `yaml:"ready"`
	Item          string `yaml:"item"`
	Airline       string `yaml:"airline"`
	Price         string `yaml:"price"`
	DepartureTime string `yaml:"departure_time"`
	Duration      string `yaml:"duration"`
}

// SourceDefinition describes one flight price source
type SourceDefinition struct {
	Name        string        `yaml:"name"`
	Kind        string        `yaml:"kind"`
	URLTemplate string        `yaml:"url_template"`
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	SettleMin   time.Duration `yaml:"settle_min"`
	SettleMax   time.Duration `yaml:"settle_max"`
	MaxResults  int           `yaml:"max_results"`
	Selectors   SelectorSet   `yaml:"selectors"`
}

type sourcesFile struct {
	Sources []SourceDefinition `yaml:"sources"`
}

// BuildURL fills the url template for a route and date
func (d SourceDefinition) BuildURL(origin, destination, date string) string {
	return strings.NewReplacer(
		"{origin}", origin,
		"{destination}", destination,
		"{date}", date,
	).Replace(d.URLTemplate)
}

// LoadSources reads source definitions from path, or the embedded defaults when path is empty
func LoadSources(path string) ([]SourceDefinition, error) {
	data := defaultSourcesYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
		}
		data = fileData
	}

	definitions, err := ParseSources(data)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"component": "SourcesLoader",
		"path":      path,
		"count":     len(definitions),
	}).Info("Loaded flight price sources")

	return definitions, nil
}

// ParseSources decodes and validates a sources document
func ParseSources(data []byte) ([]SourceDefinition, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid sources yaml: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("no sources defined")
	}

	seen := make(map[string]bool, len(file.Sources))
	for i := range file.Sources {
		definition := &file.Sources[i]
		if definition.Name == "" {
			return nil, fmt.Errorf("source %d has no name", i)
		}
		if seen[definition.Name] {
			return nil, fmt.Errorf("duplicate source name %q", definition.Name)
		}
		seen[definition.Name] = true

		if definition.Kind == "" {
			definition.Kind = SourceKindBrowser
		}
		if definition.Kind != SourceKindBrowser && definition.Kind != SourceKindHTML {
			return nil, fmt.Errorf("source %q has unknown kind %q", definition.Name, definition.Kind)
		}
		if definition.URLTemplate == "" || definition.Selectors.Item == "" || definition.Selectors.Price == "" {
			return nil, fmt.Errorf("source %q needs url_template, item and price selectors", definition.Name)
		}
		if definition.MaxResults <= 0 {
			definition.MaxResults = 10
		}
		if definition.WaitTimeout <= 0 {
			definition.WaitTimeout = 20 * time.Second
		}
		if definition.SettleMax < definition.SettleMin {
			definition.SettleMax = definition.SettleMin
		}
	}

	return file.Sources, nil
}
