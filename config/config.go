package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	GeminiApiKey string
	Tutor        Tutor
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Tutor groups the AI-tutor pipeline knobs. Cache sizes/TTL bound the in-memory
// response and embedding caches; both are lost on process restart by design.
type Tutor struct {
	GenerativeModel   string
	EmbeddingModel    string
	ResponseCacheSize int
	EmbedCacheSize    int
	CacheTTL          time.Duration
	ContextTimeout    time.Duration
	HistoryLimit      int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("TUTOR_GENERATIVE_MODEL", "gemini-1.5-flash")
	viper.SetDefault("TUTOR_EMBEDDING_MODEL", "text-embedding-004")
	viper.SetDefault("TUTOR_RESPONSE_CACHE_SIZE", 256)
	viper.SetDefault("TUTOR_EMBED_CACHE_SIZE", 512)
	viper.SetDefault("TUTOR_CACHE_TTL_MINUTES", 30)
	viper.SetDefault("TUTOR_CONTEXT_TIMEOUT_SECONDS", 5)
	viper.SetDefault("TUTOR_HISTORY_LIMIT", 10)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	config.Tutor.GenerativeModel = viper.GetString("TUTOR_GENERATIVE_MODEL")
	config.Tutor.EmbeddingModel = viper.GetString("TUTOR_EMBEDDING_MODEL")
	config.Tutor.ResponseCacheSize = viper.GetInt("TUTOR_RESPONSE_CACHE_SIZE")
	config.Tutor.EmbedCacheSize = viper.GetInt("TUTOR_EMBED_CACHE_SIZE")
	config.Tutor.CacheTTL = time.Duration(viper.GetInt("TUTOR_CACHE_TTL_MINUTES")) * time.Minute
	config.Tutor.ContextTimeout = time.Duration(viper.GetInt("TUTOR_CONTEXT_TIMEOUT_SECONDS")) * time.Second
	config.Tutor.HistoryLimit = viper.GetInt("TUTOR_HISTORY_LIMIT")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
