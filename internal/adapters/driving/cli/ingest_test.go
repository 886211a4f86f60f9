package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// officesJSON holds records long enough to pass the quality gate.
const officesJSON = `[
  {"office": "Ward Office East", "details": "The ward office east handles birth certificates, death certificates, property tax collection and trade licences for all eastern wards. Citizens can visit between ten in the morning and five in the evening on working days. The office also accepts online applications for most certificate services through the municipal portal and responds within seven working days."},
  {"office": "Ward Office West", "details": "The ward office west handles water supply complaints, road maintenance requests and streetlight repairs for the western zone. Complaints can be registered at the helpdesk or through the citizen helpline which operates around the clock. Urgent water supply failures are attended within twenty four hours and road repair requests are scheduled within two weeks of verification."}
]`

// Ingest Command Tests

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file...]", ingestCmd.Use)
}

func TestIngestCmd_RequiresFileArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_IngestsJSONFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := filepath.Join(t.TempDir(), "offices.json")
	require.NoError(t, os.WriteFile(path, []byte(officesJSON), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path, "--category", "departments"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Ingested offices.json")
	assert.Contains(t, output, "Source ID:  src_")
	assert.Contains(t, output, "Records:    2")

	// Progress stages are printed in order.
	assert.Less(t, strings.Index(output, "extracting"), strings.Index(output, "embedding"))
	assert.Contains(t, output, "done")
}

func TestIngestCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := filepath.Join(t.TempDir(), "offices.json")
	require.NoError(t, os.WriteFile(path, []byte(officesJSON), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path, "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, `"Filename": "offices.json"`)
	assert.Contains(t, output, `"RecordCount": 2`)
	assert.NotContains(t, output, "extracting")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "/nonexistent/file.json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 file failed")
	assert.Contains(t, buf.String(), "FAILED")
}

func TestIngestCmd_EmptyFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "empty content")
}

func resetIngestFlags() {
	ingestCategory = ""
	ingestLanguage = ""
	ingestStructure = ""
	ingestChunkSize = ""
	ingestImportance = 0
	ingestJSON = false
}
