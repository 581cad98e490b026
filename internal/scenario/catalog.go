// Package scenario holds the fixture catalog: predefined test issues with
// the labels and assessment the triage workflow is expected to produce.
package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var defaultCatalog []byte

// Scenario is one test fixture: the issue to create and the outcome the
// triage workflow is expected to produce for it.
type Scenario struct {
	Name               string   `yaml:"name"`
	Title              string   `yaml:"title"`
	Body               string   `yaml:"body"`
	Labels             []string `yaml:"labels"`
	IsPositive         bool     `yaml:"is_positive"`
	ExpectedAssessment string   `yaml:"expected_assessment"`
	ExpectedLabels     []string `yaml:"expected_labels"`
}

// catalogFile is the YAML shape of a scenario file.
type catalogFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Default returns the embedded scenario catalog.
func Default() ([]Scenario, error) {
	return parse(defaultCatalog)
}

// Load reads a scenario catalog from a YAML file.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Scenario, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenarios YAML: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario catalog is empty")
	}

	for i, sc := range file.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario %d: missing name", i)
		}
		if sc.Title == "" {
			return nil, fmt.Errorf("scenario %q: missing title", sc.Name)
		}
		if sc.Body == "" {
			return nil, fmt.Errorf("scenario %q: missing body", sc.Name)
		}
	}
	return file.Scenarios, nil
}

// ByName finds a scenario in the catalog by name.
func ByName(scenarios []Scenario, name string) (*Scenario, bool) {
	for i := range scenarios {
		if scenarios[i].Name == name {
			return &scenarios[i], true
		}
	}
	return nil, false
}
