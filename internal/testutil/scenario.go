// Package testutil provides shared test helpers for BlockScript Go tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the scenario directory relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one end-to-end case loaded from a YAML file.
type Scenario struct {
	Name        string         `yaml:"-"`
	Path        string         `yaml:"-"`
	Description string         `yaml:"description"`
	Cmd         string         `yaml:"cmd"` // run, check or fmt
	Strict      bool           `yaml:"strict"`
	Source      string         `yaml:"source"`
	Expect      ExpectedResult `yaml:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode    int                  `yaml:"exitCode"`
	Output      []string             `yaml:"output"`
	Formatted   string               `yaml:"formatted"`
	Diagnostics []ExpectedDiagnostic `yaml:"diagnostics"`
}

// ExpectedDiagnostic matches a diagnostic by code and, when non-zero, by the
// line it starts on. Message is a substring match.
type ExpectedDiagnostic struct {
	Code    string `yaml:"code"`
	Line    int    `yaml:"line"`
	Message string `yaml:"message"`
}

var validCmds = map[string]bool{"run": true, "check": true, "fmt": true}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Cmd == "" {
		s.Cmd = "run"
	}
	if !validCmds[s.Cmd] {
		return nil, fmt.Errorf("%s: unknown cmd %q", path, s.Cmd)
	}
	s.Path = path
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &s, nil
}

// ListScenarios returns the scenario files under root in name order.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
