package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmaystre/titrekick/scenario"
)

const testScenario = "../../scenario/testdata/cross.yaml"

func TestLoadOptionsFlags(t *testing.T) {
	opts, err := loadOptions([]string{"--scenario", "a.yaml", "--model", "fast", "--plot", "out.png"})
	require.NoError(t, err)
	assert.Equal(t, options{Scenario: "a.yaml", Model: "fast", Plot: "out.png"}, opts)
}

func TestLoadOptionsEnv(t *testing.T) {
	t.Setenv("TITRESIM_SCENARIO", "env.yaml")
	t.Setenv("TITRESIM_MODEL", "titre_dependent")
	opts, err := loadOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", opts.Scenario)
	assert.Equal(t, "titre_dependent", opts.Model)

	// Flags win over the environment.
	opts, err = loadOptions([]string{"--scenario", "flag.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "flag.yaml", opts.Scenario)
}

func TestLoadOptionsMissingScenario(t *testing.T) {
	_, err := loadOptions(nil)
	require.Error(t, err)

	_, err = loadOptions([]string{"--unknown"})
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	plot := filepath.Join(t.TempDir(), "titres.png")
	err := run(options{Scenario: testScenario, Plot: plot}, &out, logr.Discard())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"p1", "2", "0", "1.1875"}, strings.Fields(lines[1]))
	assert.FileExists(t, plot)
}

func TestRunModelOverride(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(options{Scenario: testScenario, Model: "fast"}, &out, logr.Discard()))
	assert.Contains(t, out.String(), "2.5625")

	err := run(options{Scenario: testScenario, Model: "cubic"}, &out, logr.Discard())
	assert.ErrorIs(t, err, scenario.ErrInvalid)
}
