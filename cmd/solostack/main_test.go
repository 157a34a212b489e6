package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/persistence"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestSimulatePrintsSummary(t *testing.T) {
	out := run(t, "simulate", "--months", "6", "--seed", "7")
	assert.Contains(t, out, "SoloStack run summary")
	assert.Regexp(t, `(?m)^M\d+ +\$`, out)
}

func TestSimulateIsDeterministic(t *testing.T) {
	a := run(t, "simulate", "--months", "24", "--seed", "3", "-q")
	b := run(t, "simulate", "--months", "24", "--seed", "3", "-q")
	assert.Equal(t, a, b)
}

func TestCatalogSynthRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.yaml")
	run(t, "catalog", "synth", "--seed", "5", "--per-pillar", "6", "-o", path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	cat, err := catalog.Parse(raw)
	require.NoError(t, err)
	assert.Len(t, cat.Components, 6*len(catalog.Pillars))

	out := run(t, "catalog", "validate", path)
	assert.Contains(t, out, "ok:")
}

func TestBadLogLevel(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"catalog", "validate", "--log-level", "loud"})
	assert.Error(t, root.Execute())
}

func TestStoredSeed(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.Zero(t, storedSeed(db))
	require.NoError(t, db.SaveMeta("seed", "77"))
	assert.Equal(t, int64(77), storedSeed(db))
	require.NoError(t, db.SaveMeta("seed", "garbage"))
	assert.Zero(t, storedSeed(db))
}
