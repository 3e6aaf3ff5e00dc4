package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v1", cfg.Refinery.Version)
	assert.Equal(t, "nltk", cfg.Refinery.StopWords)
	assert.Equal(t, "text", cfg.Refinery.TextColumn)
	assert.Equal(t, "clean_text", cfg.Refinery.OutputColumn)
	assert.Equal(t, 1, cfg.Refinery.Workers)
	assert.False(t, cfg.Refinery.DropDuplicates)
	assert.False(t, cfg.Parser.SkipEmptyRows)
	assert.Equal(t, cfg.Cache.Host, cfg.Queue.RedisHost)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TEXT_COLUMN", "tweet")
	t.Setenv("TRANSFORM_WORKERS", "8")
	t.Setenv("STOPWORDS_SOURCE", "snowball")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("DROP_DUPLICATES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tweet", cfg.Refinery.TextColumn)
	assert.Equal(t, 8, cfg.Refinery.Workers)
	assert.Equal(t, "snowball", cfg.Refinery.StopWords)
	assert.True(t, cfg.Refinery.DropDuplicates)
	assert.Equal(t, 6380, cfg.Queue.RedisPort)
	assert.Equal(t, "localhost:6380", cfg.GetRedisURL())
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("TRANSFORM_WORKERS", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "TRANSFORM_WORKERS")
}

func TestValidateDatabase(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.ValidateDatabase(), "DB_USER")

	cfg.Database.User = "refinery"
	assert.ErrorContains(t, cfg.ValidateDatabase(), "DB_PASSWORD")

	cfg.Database.Password = "secret"
	assert.NoError(t, cfg.ValidateDatabase())
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "runs", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=runs sslmode=disable", cfg.GetDatabaseURL())
}

func TestMaxFileSizeBytes(t *testing.T) {
	cfg := &Config{Parser: ParserConfig{MaxFileSizeMB: 2}}
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSizeBytes())
}
