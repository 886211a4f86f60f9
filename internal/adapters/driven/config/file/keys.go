package file

// Recognized configuration keys. Nested TOML tables flatten to
// dot-notation, so [vector] backend = "qdrant" is read as
// "vector.backend".
const (
	// KeyVectorBackend selects the vector store: memory, qdrant or
	// pinecone.
	KeyVectorBackend = "vector.backend"

	// KeyVectorURL is the backend endpoint (Qdrant base URL or
	// Pinecone index host).
	KeyVectorURL = "vector.url"

	// KeyVectorAPIKey authenticates against the backend.
	KeyVectorAPIKey = "vector.api_key"

	// KeyVectorCollection is the Qdrant collection name.
	KeyVectorCollection = "vector.collection"

	// KeyVectorNamespace is the default namespace for all operations.
	KeyVectorNamespace = "vector.namespace"

	// KeyEmbeddingProvider selects the embedder: openai or ollama.
	KeyEmbeddingProvider = "embedding.provider"

	// KeyEmbeddingModel overrides the provider's default model.
	KeyEmbeddingModel = "embedding.model"

	// KeyEmbeddingAPIKey is the OpenAI API key.
	KeyEmbeddingAPIKey = "embedding.api_key"

	// KeyEmbeddingBaseURL overrides the provider endpoint.
	KeyEmbeddingBaseURL = "embedding.base_url"

	// KeyEmbeddingDimensions overrides the embedding vector size.
	KeyEmbeddingDimensions = "embedding.dimensions"

	// KeyChunkSize is the chunk budget name: small, medium or large.
	KeyChunkSize = "chunk.size"

	// KeyQualityMinScore is the chunk validation threshold.
	KeyQualityMinScore = "quality.min_score"

	// KeyConfidenceHigh and KeyConfidenceMedium are the similarity
	// cutoffs for search confidence tiers.
	KeyConfidenceHigh   = "confidence.high"
	KeyConfidenceMedium = "confidence.medium"
)
