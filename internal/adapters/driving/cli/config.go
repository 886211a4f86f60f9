package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	configfile "github.com/civictech-labs/corpusctl/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit the corpusctl configuration file.

Keys use dot notation, e.g. vector.backend or embedding.provider.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Configuration (%s)\n\n", configStore.Path())

	cmd.Println("[Vector Store]")
	printConfigValue(cmd, "Backend", configStore.GetString(configfile.KeyVectorBackend), "memory")
	printConfigValue(cmd, "URL", configStore.GetString(configfile.KeyVectorURL), "")
	printConfigValue(cmd, "Collection", configStore.GetString(configfile.KeyVectorCollection), "")
	printConfigValue(cmd, "Namespace", configStore.GetString(configfile.KeyVectorNamespace), "")
	if key := configStore.GetString(configfile.KeyVectorAPIKey); key != "" {
		cmd.Printf("  API Key:    %s\n", maskAPIKey(key))
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	printConfigValue(cmd, "Provider", configStore.GetString(configfile.KeyEmbeddingProvider), "(not set)")
	printConfigValue(cmd, "Model", configStore.GetString(configfile.KeyEmbeddingModel), "")
	printConfigValue(cmd, "Base URL", configStore.GetString(configfile.KeyEmbeddingBaseURL), "")
	if dims := configStore.GetInt(configfile.KeyEmbeddingDimensions); dims > 0 {
		cmd.Printf("  Dimensions: %d\n", dims)
	}
	if key := configStore.GetString(configfile.KeyEmbeddingAPIKey); key != "" {
		cmd.Printf("  API Key:    %s\n", maskAPIKey(key))
	}
	cmd.Println()

	cmd.Println("[Pipeline]")
	printConfigValue(cmd, "Chunk size", configStore.GetString(configfile.KeyChunkSize), "medium")
	if minScore := configStore.GetFloat(configfile.KeyQualityMinScore); minScore > 0 {
		cmd.Printf("  Min score:  %.2f\n", minScore)
	}
	return nil
}

func printConfigValue(cmd *cobra.Command, label, value, fallback string) {
	if value == "" {
		if fallback == "" {
			return
		}
		value = fallback
	}
	cmd.Printf("  %-11s %s\n", label+":", value)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key not set: %s", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

// parseConfigValue keeps numbers and booleans typed in the TOML file.
func parseConfigValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && strings.Contains(raw, ".") {
		return f
	}
	return raw
}
