package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/luboil-lab/sales-ledger/internal/core/storage/sqlite"
	"github.com/luboil-lab/sales-ledger/internal/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMemoryConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  type: "memory"
retry:
  max_attempts: 1
`), 0o644))
	return path
}

func TestIngestPrintsSummaryAndWritesReport(t *testing.T) {
	tmpDir := t.TempDir()
	inputDir := filepath.Join(tmpDir, "in")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "sales.csv"), []byte(
		"productName,timestamp,quantity,salesAmount,cardCode,custName\n"+
			"R32,2024-01-03,10,100.50,C1,Acme\n"+
			"R32,not-a-date,1,1,C1,Acme\n"+
			"R46,2024-01-04T08:00:00Z,2,20,C2,Beta\n",
	), 0o644))
	reportPath := filepath.Join(tmpDir, "report.json")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"--config", writeMemoryConfig(t, tmpDir),
		"ingest", inputDir,
		"--format", "json",
		"--report", reportPath,
	})

	require.NoError(t, cmd.Execute())

	var printed ingestion.RunSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &printed))
	assert.Equal(t, 2, printed.Accepted)
	assert.Equal(t, 1, printed.SkippedMalformed)
	require.Len(t, printed.Files, 1)
	assert.Equal(t, ingestion.FileProcessed, printed.Files[0].Status)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var written ingestion.RunSummary
	require.NoError(t, json.Unmarshal(raw, &written))
	assert.Equal(t, printed.RunID, written.RunID)
}

func TestIngestInvalidStrategyIsCommandError(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", writeMemoryConfig(t, tmpDir), "ingest", tmpDir, "--strategy", "eager"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown watermark strategy")
}

func TestIngestInvalidFormatLeavesStoreUntouched(t *testing.T) {
	tmpDir := t.TempDir()
	inputDir := filepath.Join(tmpDir, "in")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "sales.csv"), []byte(
		"productName,timestamp,quantity,salesAmount,cardCode,custName\n"+
			"R32,2024-01-03,10,100.50,C1,Acme\n",
	), 0o644))

	dbPath := filepath.Join(tmpDir, "ledger.db")
	cfgPath := filepath.Join(tmpDir, "ledger.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
database:
  type: "sqlite"
  dsn: "%s"
retry:
  max_attempts: 1
`, dbPath)), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "ingest", inputDir, "--format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown report format "xml"`)
	assert.Empty(t, buf.String())

	st, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	_, ok, err := st.FindMaxInstant(context.Background(), "R32")
	require.NoError(t, err)
	assert.False(t, ok, "no row may be written before options are validated")
}

func TestIngestMissingInputDirFails(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", writeMemoryConfig(t, tmpDir), "ingest", filepath.Join(tmpDir, "missing")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMigrateMemoryStore(t *testing.T) {
	tmpDir := t.TempDir()
	buf := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--config", writeMemoryConfig(t, tmpDir), "migrate"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "schema up to date (memory)")
}
