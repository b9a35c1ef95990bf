package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/pkg/config"
)

func testConfig(t *testing.T, autosave bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env: config.EnvDevelopment,
		Storage: config.StorageConfig{
			DataDir:   filepath.Join(dir, "data"),
			DataFile:  "records.json",
			ExportDir: filepath.Join(dir, "exports"),
		},
		Records:     config.RecordsConfig{MaxWeeks: 13, DefaultMaxScore: 100},
		Metrics:     config.MetricsConfig{TextfilePath: filepath.Join(dir, "records.prom")},
		Persistence: config.PersistenceConfig{Autosave: autosave},
	}
}

func runSession(t *testing.T, cfg *config.Config, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, zap.NewNop(), strings.NewReader(strings.Join(lines, "\n")), &out)
	require.NoError(t, err)
	return out.String()
}

func TestRunPersistsAcrossSessions(t *testing.T) {
	cfg := testConfig(t, true)

	runSession(t, cfg,
		`{"command":"add_person","args":{"name":"Bobby","phone":"98765432","email":"bobby@example.com","address":"Clementi Ave 2"}}`,
		`{"command":"add_class","args":{"name":"G04","venue":"COM1","day":"Tue","time":"12:00","weeks":13}}`,
		`{"command":"add_student","args":{"name":"Bobby","student_id":"E1234567","tutorial":"G04"}}`,
		`{"command":"export","args":{"report":"attendance","tutorial":"G04"}}`,
	)

	_, err := os.Stat(filepath.Join(cfg.Storage.DataDir, "records.json"))
	require.NoError(t, err)
	metrics, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "records_students 1")
	exports, err := os.ReadDir(cfg.Storage.ExportDir)
	require.NoError(t, err)
	assert.Len(t, exports, 1)

	out := runSession(t, cfg, `{"command":"list_students"}`)
	assert.Contains(t, out, "Bobby; Student ID: E1234567; Tutorial: G04")
}

func TestRunWithoutAutosaveSavesOnExit(t *testing.T) {
	cfg := testConfig(t, false)
	runSession(t, cfg, `{"command":"add_assessment","args":{"name":"Quiz1","max_score":10}}`)

	out := runSession(t, cfg, `{"command":"delete_assessment","args":{"name":"Quiz1"}}`)
	assert.Contains(t, out, "Deleted assessment: Quiz1")
}

func TestRunQuarantinesInvalidRecords(t *testing.T) {
	cfg := testConfig(t, true)
	require.NoError(t, os.MkdirAll(cfg.Storage.DataDir, 0o755))
	// the student has no matching person
	broken := `{"version":1,"persons":[],"tutorials":[{"name":"T01","venue":"COM1","day":"Mon","time":"10:00","weeks":2,
		"roster":[{"name":"Ghost","phone":"123","email":"g@example.com","address":"x","student_id":"E0000001","tutorial_name":"T01"}],
		"attendance":[]}],"assessments":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Storage.DataDir, "records.json"), []byte(broken), 0o644))

	out := runSession(t, cfg, `{"command":"list_classes"}`)
	assert.Equal(t, "Listed all tutorials\n", out)

	entries, err := os.ReadDir(cfg.Storage.DataDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".corrupt"))
}
