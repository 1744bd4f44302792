package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PadelTracker/internal/analyst"
	"PadelTracker/internal/config"
	"PadelTracker/internal/dashboard"
	"PadelTracker/internal/model"
)

func setupTest(t *testing.T) *bytes.Buffer {
	t.Helper()
	for _, k := range []string{"API_KEY", "GEMINI_API_KEY", "DATA_SOURCE_BASE_URL", "SQLITE_PATH", "STATE_FILE", "MOCK_LATENCY"} {
		t.Setenv(k, "")
	}
	logger = zap.NewNop()

	var err error
	cfg, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.DataSource.Latency = time.Millisecond
	cfg.DataSource.Seed = 42
	t.Cleanup(func() { cfg = nil })
	return &bytes.Buffer{}
}

func testCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(out)
	return cmd
}

func TestSnapshotCmd(t *testing.T) {
	out := setupTest(t)

	require.NoError(t, runSnapshot(testCmd(out), nil))

	var list dashboard.CompetitorList
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	require.Len(t, list.Competitors, 6)
	assert.Equal(t, list.BestPrice, list.Competitors[0].CurrentPrice)
}

func TestAnalyzeCmd_FallbackWithoutKey(t *testing.T) {
	out := setupTest(t)

	require.NoError(t, runAnalyze(testCmd(out), nil))

	var result model.AIAnalysisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, analyst.Fallback(), result)
}

func TestHistoryCmd(t *testing.T) {
	out := setupTest(t)

	err := runHistory(testCmd(out), nil)
	assert.ErrorIs(t, err, errNoHistory)

	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "tracker.db")
	require.NoError(t, runAnalyze(testCmd(&bytes.Buffer{}), nil))

	historyLimit = 5
	require.NoError(t, runHistory(testCmd(out), nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "failed")
	assert.Contains(t, lines[1], "NEUTRAL")
}

func TestApp_RestoresSavedState(t *testing.T) {
	setupTest(t)
	cfg.State.File = filepath.Join(t.TempDir(), "state.json")

	first, err := newApp(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.False(t, first.restore(logger))
	_, err = first.svc.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := newApp(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer second.Close()
	require.True(t, second.restore(logger))
	snap, err := second.svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Competitors, 6)
}
