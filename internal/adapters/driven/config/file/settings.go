package file

import (
	"os"

	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyDataDir           = "data_dir"
	KeyAnthropicAPIKey   = "anthropic.api_key"
	KeyModel             = "anthropic.model"
	KeyChunkSize         = "index.chunk_size"
	KeyChunkOverlap      = "index.chunk_overlap"
	KeySearchLimit       = "search.limit"
	KeyChunkSearchLimit  = "search.chunk_limit"
	KeySmallDocThreshold = "chat.small_doc_threshold"
	KeyMaxRounds         = "chat.max_rounds"
	KeyRatePerMinute     = "chat.messages_per_minute"
	KeyMaxMessageLength  = "chat.max_message_length"
)

// envAPIKey is consulted when no API key is configured.
const envAPIKey = "ANTHROPIC_API_KEY"

// Settings is the typed view of the configuration the application reads at
// startup. Zero-valued fields were not configured; callers apply their own
// defaults.
type Settings struct {
	// DataDir is where the database and stored files live.
	// Empty means ~/.gioia/data.
	DataDir string

	// AnthropicAPIKey enables enrichment and chat when set. Falls back to
	// the ANTHROPIC_API_KEY environment variable.
	AnthropicAPIKey string

	// Model overrides the default model name.
	Model string

	// Chunking parameters.
	ChunkSize    int
	ChunkOverlap int

	// Retrieval limits.
	SearchLimit      int
	ChunkSearchLimit int

	// Chat parameters.
	SmallDocThreshold int
	MaxRounds         int
	MessagesPerMinute int
	MaxMessageLength  int
}

// LoadSettings reads the typed settings from a config store.
func LoadSettings(store driven.ConfigStore) Settings {
	s := Settings{
		DataDir:           store.GetString(KeyDataDir),
		AnthropicAPIKey:   store.GetString(KeyAnthropicAPIKey),
		Model:             store.GetString(KeyModel),
		ChunkSize:         store.GetInt(KeyChunkSize),
		ChunkOverlap:      store.GetInt(KeyChunkOverlap),
		SearchLimit:       store.GetInt(KeySearchLimit),
		ChunkSearchLimit:  store.GetInt(KeyChunkSearchLimit),
		SmallDocThreshold: store.GetInt(KeySmallDocThreshold),
		MaxRounds:         store.GetInt(KeyMaxRounds),
		MessagesPerMinute: store.GetInt(KeyRatePerMinute),
		MaxMessageLength:  store.GetInt(KeyMaxMessageLength),
	}

	if s.AnthropicAPIKey == "" {
		s.AnthropicAPIKey = os.Getenv(envAPIKey)
	}
	return s
}
