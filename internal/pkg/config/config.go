package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Environment
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	Refinery RefineryConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Queue    QueueConfig
	Storage  StorageConfig
	Parser   ParserConfig
}

// RefineryConfig selects the cleaning refinery and the dataset columns it works on
type RefineryConfig struct {
	Version      string `mapstructure:"REFINERY_VERSION"`
	StopWords    string `mapstructure:"STOPWORDS_SOURCE"`
	TextColumn   string `mapstructure:"TEXT_COLUMN"`
	OutputColumn string `mapstructure:"OUTPUT_COLUMN"`
	Workers      int    `mapstructure:"TRANSFORM_WORKERS"`

	// DropDuplicates removes rows whose cleaned text repeats an earlier row
	DropDuplicates bool `mapstructure:"DROP_DUPLICATES"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            int    `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Database        string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	LogLevel        string `mapstructure:"DB_LOG_LEVEL"`
	MaxConnections  int    `mapstructure:"DB_MAX_CONNECTIONS"`
	MinConnections  int    `mapstructure:"DB_MIN_CONNECTIONS"`
	MaxConnLifetime int    `mapstructure:"DB_MAX_CONN_LIFETIME_MIN"`
	MaxConnIdleTime int    `mapstructure:"DB_MAX_CONN_IDLE_MIN"`
}

type CacheConfig struct {
	Host           string `mapstructure:"REDIS_HOST"`
	Port           int    `mapstructure:"REDIS_PORT"`
	Password       string `mapstructure:"REDIS_PASSWORD"`
	DB             int    `mapstructure:"REDIS_DB"`
	DialTimeout    int    `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout    int    `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout   int    `mapstructure:"REDIS_WRITE_TIMEOUT"`
	PoolSize       int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns   int    `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	LockTTLSeconds int    `mapstructure:"LOCK_TTL_SECONDS"`
}

type QueueConfig struct {
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	RedisDB        int
	DialTimeout    int
	ReadTimeout    int
	WriteTimeout   int
	Concurrency    int  `mapstructure:"WORKER_CONCURRENCY"`
	MaxRetries     int  `mapstructure:"WORKER_MAX_RETRIES"`
	StrictPriority bool `mapstructure:"QUEUE_STRICT_PRIORITY"`
}

type StorageConfig struct {
	BasePath string `mapstructure:"STORAGE_DIR"`
}

type ParserConfig struct {
	MaxFileSizeMB  int64 `mapstructure:"MAX_FILE_SIZE_MB"`
	TrimWhitespace bool  `mapstructure:"PARSER_TRIM_WHITESPACE"`
	SkipEmptyRows  bool  `mapstructure:"PARSER_SKIP_EMPTY_ROWS"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists; a missing file is not an error
	_ = godotenv.Load(".env")

	config := &Config{}

	// Set defaults
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")

	// Refinery defaults
	viper.SetDefault("REFINERY_VERSION", "v1")
	viper.SetDefault("STOPWORDS_SOURCE", "nltk")
	viper.SetDefault("TEXT_COLUMN", "text")
	viper.SetDefault("OUTPUT_COLUMN", "clean_text")
	viper.SetDefault("TRANSFORM_WORKERS", 1)
	viper.SetDefault("DROP_DUPLICATES", false)

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "textrefinery")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_LOG_LEVEL", "silent")
	viper.SetDefault("DB_MAX_CONNECTIONS", 10)
	viper.SetDefault("DB_MIN_CONNECTIONS", 2)
	viper.SetDefault("DB_MAX_CONN_LIFETIME_MIN", 30)
	viper.SetDefault("DB_MAX_CONN_IDLE_MIN", 5)

	// Redis defaults
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 1)
	viper.SetDefault("LOCK_TTL_SECONDS", 600)

	// Worker defaults
	viper.SetDefault("WORKER_CONCURRENCY", 4)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)
	viper.SetDefault("QUEUE_STRICT_PRIORITY", false)

	// File processing defaults
	viper.SetDefault("STORAGE_DIR", "/tmp/textrefinery")
	viper.SetDefault("MAX_FILE_SIZE_MB", 100)
	viper.SetDefault("PARSER_TRIM_WHITESPACE", true)
	viper.SetDefault("PARSER_SKIP_EMPTY_ROWS", false)

	// Bind environment variables
	viper.AutomaticEnv()

	config.Environment = viper.GetString("ENV")
	config.LogLevel = viper.GetString("LOG_LEVEL")

	// Refinery
	config.Refinery.Version = viper.GetString("REFINERY_VERSION")
	config.Refinery.StopWords = viper.GetString("STOPWORDS_SOURCE")
	config.Refinery.TextColumn = viper.GetString("TEXT_COLUMN")
	config.Refinery.OutputColumn = viper.GetString("OUTPUT_COLUMN")
	config.Refinery.Workers = viper.GetInt("TRANSFORM_WORKERS")
	config.Refinery.DropDuplicates = viper.GetBool("DROP_DUPLICATES")

	// Database
	config.Database.Host = viper.GetString("DB_HOST")
	config.Database.Port = viper.GetInt("DB_PORT")
	config.Database.User = viper.GetString("DB_USER")
	config.Database.Password = viper.GetString("DB_PASSWORD")
	config.Database.Database = viper.GetString("DB_NAME")
	config.Database.SSLMode = viper.GetString("DB_SSLMODE")
	config.Database.LogLevel = viper.GetString("DB_LOG_LEVEL")
	config.Database.MaxConnections = viper.GetInt("DB_MAX_CONNECTIONS")
	config.Database.MinConnections = viper.GetInt("DB_MIN_CONNECTIONS")
	config.Database.MaxConnLifetime = viper.GetInt("DB_MAX_CONN_LIFETIME_MIN")
	config.Database.MaxConnIdleTime = viper.GetInt("DB_MAX_CONN_IDLE_MIN")

	// Redis
	config.Cache.Host = viper.GetString("REDIS_HOST")
	config.Cache.Port = viper.GetInt("REDIS_PORT")
	config.Cache.Password = viper.GetString("REDIS_PASSWORD")
	config.Cache.DB = viper.GetInt("REDIS_DB")
	config.Cache.DialTimeout = viper.GetInt("REDIS_DIAL_TIMEOUT")
	config.Cache.ReadTimeout = viper.GetInt("REDIS_READ_TIMEOUT")
	config.Cache.WriteTimeout = viper.GetInt("REDIS_WRITE_TIMEOUT")
	config.Cache.PoolSize = viper.GetInt("REDIS_POOL_SIZE")
	config.Cache.MinIdleConns = viper.GetInt("REDIS_MIN_IDLE_CONNS")
	config.Cache.LockTTLSeconds = viper.GetInt("LOCK_TTL_SECONDS")

	// Queue shares the redis connection settings
	config.Queue.RedisHost = config.Cache.Host
	config.Queue.RedisPort = config.Cache.Port
	config.Queue.RedisPassword = config.Cache.Password
	config.Queue.RedisDB = config.Cache.DB
	config.Queue.DialTimeout = config.Cache.DialTimeout
	config.Queue.ReadTimeout = config.Cache.ReadTimeout
	config.Queue.WriteTimeout = config.Cache.WriteTimeout
	config.Queue.Concurrency = viper.GetInt("WORKER_CONCURRENCY")
	config.Queue.MaxRetries = viper.GetInt("WORKER_MAX_RETRIES")
	config.Queue.StrictPriority = viper.GetBool("QUEUE_STRICT_PRIORITY")

	// File processing
	config.Storage.BasePath = viper.GetString("STORAGE_DIR")
	config.Parser.MaxFileSizeMB = viper.GetInt64("MAX_FILE_SIZE_MB")
	config.Parser.TrimWhitespace = viper.GetBool("PARSER_TRIM_WHITESPACE")
	config.Parser.SkipEmptyRows = viper.GetBool("PARSER_SKIP_EMPTY_ROWS")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings every command relies on
func (c *Config) Validate() error {
	if c.Refinery.TextColumn == "" {
		return fmt.Errorf("TEXT_COLUMN is required")
	}
	if c.Refinery.OutputColumn == "" {
		return fmt.Errorf("OUTPUT_COLUMN is required")
	}
	if c.Refinery.Workers < 1 {
		return fmt.Errorf("TRANSFORM_WORKERS must be at least 1, got %d", c.Refinery.Workers)
	}
	if c.Parser.MaxFileSizeMB < 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must not be negative")
	}
	return nil
}

// ValidateDatabase checks the settings needed to open the run database
func (c *Config) ValidateDatabase() error {
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	return nil
}

// GetDatabaseURL constructs the PostgreSQL connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.Database, c.Database.SSLMode)
}

// GetRedisURL constructs the Redis address
func (c *Config) GetRedisURL() string {
	return fmt.Sprintf("%s:%d", c.Cache.Host, c.Cache.Port)
}

// MaxFileSizeBytes converts the configured limit; 0 means unlimited
func (c *Config) MaxFileSizeBytes() int64 {
	return c.Parser.MaxFileSizeMB * 1024 * 1024
}

// LogConfig logs the configuration (hiding sensitive data)
func (c *Config) LogConfig(logger *slog.Logger) {
	passwordState := "[NOT SET]"
	if c.Database.Password != "" {
		passwordState = "[CONFIGURED]"
	}

	logger.Debug("configuration loaded",
		slog.String("environment", c.Environment),
		slog.String("refinery", c.Refinery.Version),
		slog.String("stopwords", c.Refinery.StopWords),
		slog.String("text_column", c.Refinery.TextColumn),
		slog.String("output_column", c.Refinery.OutputColumn),
		slog.Int("workers", c.Refinery.Workers),
		slog.String("database", fmt.Sprintf("%s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Database)),
		slog.String("db_password", passwordState),
		slog.String("redis", c.GetRedisURL()),
		slog.Int("worker_concurrency", c.Queue.Concurrency),
		slog.String("storage_dir", c.Storage.BasePath),
	)
}
