package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/civictech-labs/corpusctl/internal/adapters/driven/config/file"
)

// setupTestConfig wires the config commands to a store in a temp dir.
func setupTestConfig(t *testing.T) func() {
	t.Helper()

	oldConfig := configStore
	oldReady := servicesReady

	store, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	configStore = store
	servicesReady = true

	return func() {
		configStore = oldConfig
		servicesReady = oldReady
	}
}

// Config Command Tests

func TestConfigCmd_Use(t *testing.T) {
	assert.Equal(t, "config", configCmd.Use)
}

func TestConfigCmd_HasSubcommands(t *testing.T) {
	commands := configCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "set")
}

func TestConfigShowCmd_Defaults(t *testing.T) {
	cleanup := setupTestConfig(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Backend:    memory")
	assert.Contains(t, buf.String(), "Provider:   (not set)")
}

func TestConfigSetAndGet(t *testing.T) {
	cleanup := setupTestConfig(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "vector.backend", "qdrant"})
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "get", "vector.backend"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "qdrant")
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestConfig(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "get", "vector.nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "key not set")
}

func TestConfigShowCmd_MasksAPIKey(t *testing.T) {
	cleanup := setupTestConfig(t)
	defer cleanup()

	require.NoError(t, configStore.Set(configfile.KeyEmbeddingAPIKey, "sk-verysecretkey12345"))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.NotContains(t, buf.String(), "sk-verysecretkey12345")
	assert.Contains(t, buf.String(), "sk-v...2345")
}

// Parse Helper Tests

func TestParseConfigValue(t *testing.T) {
	assert.Equal(t, true, parseConfigValue("true"))
	assert.Equal(t, int64(1536), parseConfigValue("1536"))
	assert.Equal(t, 0.85, parseConfigValue("0.85"))
	assert.Equal(t, "qdrant", parseConfigValue("qdrant"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
