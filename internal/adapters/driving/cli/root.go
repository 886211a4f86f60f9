// Package cli implements the corpusctl command-line interface. Commands
// talk to core services through the driving ports; the services are
// wired lazily from configuration on first use so that argument errors
// never touch a backend.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	configfile "github.com/civictech-labs/corpusctl/internal/adapters/driven/config/file"
	"github.com/civictech-labs/corpusctl/internal/adapters/driven/embedding/ollama"
	"github.com/civictech-labs/corpusctl/internal/adapters/driven/embedding/openai"
	"github.com/civictech-labs/corpusctl/internal/adapters/driven/jobstore/sqlite"
	"github.com/civictech-labs/corpusctl/internal/adapters/driven/vectorstore/memory"
	"github.com/civictech-labs/corpusctl/internal/adapters/driven/vectorstore/pinecone"
	"github.com/civictech-labs/corpusctl/internal/adapters/driven/vectorstore/qdrant"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
	"github.com/civictech-labs/corpusctl/internal/core/services"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
	"github.com/civictech-labs/corpusctl/internal/extractors"
	"github.com/civictech-labs/corpusctl/internal/logger"
	"github.com/civictech-labs/corpusctl/internal/validators"
)

// version is set at build time via ldflags.
var version = "dev"

// Services used by the commands. Wired by initServices from config, or
// injected directly in tests.
var (
	configStore      driven.ConfigStore
	vectorStore      driven.VectorStore
	embedder         driven.EmbeddingService
	jobStore         driven.JobStore
	ingestService    driving.IngestOrchestrator
	lifecycleService driving.LifecycleManager
)

// servicesReady short-circuits initServices once wiring has happened.
var servicesReady bool

var (
	flagVerbose   bool
	flagConfigDir string
	flagNamespace string
)

var rootCmd = &cobra.Command{
	Use:   "corpusctl",
	Short: "Corpus ingestion and vector lifecycle management",
	Long: `corpusctl ingests civic data files (JSON, Excel, CSV, text, PDF)
into a vector store and manages the stored vectors: listing, browsing,
searching, deduplicating and safely deleting them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.corpusctl)")
	rootCmd.PersistentFlags().StringVarP(&flagNamespace, "namespace", "n", "", "vector namespace (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	version = v
}

// initServices builds all services from configuration. Safe to call
// repeatedly; wiring happens once.
func initServices() error {
	if servicesReady {
		return nil
	}

	var err error
	configStore, err = configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	embedder = buildEmbedder(configStore)

	vectorStore, err = buildVectorStore(configStore, embedder)
	if err != nil {
		return fmt.Errorf("connect vector store: %w", err)
	}

	// Job tracking is best effort; ingestion works without it.
	jobStore, err = sqlite.NewStore("")
	if err != nil {
		logger.Warn("Job store unavailable: %v", err)
		jobStore = nil
	}

	var validatorOpts []validators.Option
	if minScore := configStore.GetFloat(configfile.KeyQualityMinScore); minScore > 0 {
		validatorOpts = append(validatorOpts, validators.WithMinScore(minScore))
	}

	ingestService = services.NewIngestOrchestrator(
		extractors.DefaultRouter(),
		validators.NewValidator(validatorOpts...),
		enrichers.NewEnricher(),
		embedder,
		vectorStore,
		jobStore,
	)

	var lifecycleOpts []services.LifecycleOption
	if high := configStore.GetFloat(configfile.KeyConfidenceHigh); high > 0 {
		medium := configStore.GetFloat(configfile.KeyConfidenceMedium)
		if medium <= 0 {
			medium = domain.DefaultConfidenceThresholds.Medium
		}
		lifecycleOpts = append(lifecycleOpts, services.WithThresholds(domain.ConfidenceThresholds{High: high, Medium: medium}))
	}
	lifecycleService = services.NewLifecycleManager(vectorStore, embedder, lifecycleOpts...)

	servicesReady = true
	return nil
}

// buildEmbedder constructs the configured embedding service, nil when
// no provider is configured.
func buildEmbedder(cfg driven.ConfigStore) driven.EmbeddingService {
	switch cfg.GetString(configfile.KeyEmbeddingProvider) {
	case "openai":
		service, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.GetString(configfile.KeyEmbeddingAPIKey),
			BaseURL:    cfg.GetString(configfile.KeyEmbeddingBaseURL),
			Model:      cfg.GetString(configfile.KeyEmbeddingModel),
			Dimensions: cfg.GetInt(configfile.KeyEmbeddingDimensions),
		})
		if err != nil {
			logger.Warn("Embedding service unavailable: %v", err)
			return nil
		}
		return service
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString(configfile.KeyEmbeddingBaseURL),
			Model:      cfg.GetString(configfile.KeyEmbeddingModel),
			Dimensions: cfg.GetInt(configfile.KeyEmbeddingDimensions),
		})
	default:
		return nil
	}
}

// buildVectorStore constructs the configured backend. The in-memory
// store is the default so the CLI works without any configuration.
func buildVectorStore(cfg driven.ConfigStore, embedder driven.EmbeddingService) (driven.VectorStore, error) {
	dimensions := cfg.GetInt(configfile.KeyEmbeddingDimensions)
	if dimensions == 0 && embedder != nil {
		dimensions = embedder.Dimensions()
	}

	switch backend := cfg.GetString(configfile.KeyVectorBackend); backend {
	case "", "memory":
		return memory.NewStore(), nil
	case "qdrant":
		return qdrant.NewStore(context.Background(), qdrant.Config{
			BaseURL:    cfg.GetString(configfile.KeyVectorURL),
			APIKey:     cfg.GetString(configfile.KeyVectorAPIKey),
			Collection: cfg.GetString(configfile.KeyVectorCollection),
			Dimensions: dimensions,
		})
	case "pinecone":
		return pinecone.NewStore(pinecone.Config{
			APIKey:     cfg.GetString(configfile.KeyVectorAPIKey),
			IndexHost:  cfg.GetString(configfile.KeyVectorURL),
			Dimensions: dimensions,
		})
	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidInput, backend)
	}
}

// namespace resolves the effective namespace: flag first, then config.
func namespace() string {
	if flagNamespace != "" {
		return flagNamespace
	}
	if configStore != nil {
		return configStore.GetString(configfile.KeyVectorNamespace)
	}
	return ""
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// confirm asks the operator to type the given word before a destructive
// action proceeds.
func confirm(cmd *cobra.Command, word string) bool {
	cmd.Printf("Type %q to confirm: ", word)
	reader := bufio.NewReader(os.Stdin)
	return readLine(reader) == word
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func formatCount(n int, singular string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + singular + "s"
}
