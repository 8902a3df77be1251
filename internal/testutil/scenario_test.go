package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hello.yaml", `
description: prints a greeting
source: |
  print "hi"
expect:
  output: ["hi"]
  diagnostics:
    - code: E_NAME
      line: 2
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", s.Name)
	assert.Equal(t, "run", s.Cmd, "cmd defaults to run")
	assert.Equal(t, "print \"hi\"\n", s.Source)
	assert.Equal(t, []string{"hi"}, s.Expect.Output)
	assert.Equal(t, []ExpectedDiagnostic{{Code: "E_NAME", Line: 2}}, s.Expect.Diagnostics)
}

func TestLoadScenarioRejectsUnknownCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "cmd: explode\nsource: x\n")
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestListScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "source: x\n")
	writeFile(t, dir, "a.yml", "source: x\n")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	files, err := ListScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)
}
