package main

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/core/services/cleaning"
	"github.com/alejandroruanova/text-refinery/internal/core/services/refinery"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/cache"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/database"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/database/repositories"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/linguistics"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/parsers"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/storage"
	"github.com/alejandroruanova/text-refinery/internal/pkg/config"
	"github.com/alejandroruanova/text-refinery/internal/pkg/logger"
)

// commandContext loads configuration once per invocation and builds the
// dependencies commands ask for
type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     *slog.Logger

	resourcesOnce sync.Once
	english       *linguistics.English
	resourcesErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
		c.logger = logger.InitializeWithOutput(cfg.Environment, cfg.LogLevel, cmd.ErrOrStderr())
		cfg.LogConfig(c.logger)
	})
	return c.config, c.configErr
}

// resources loads the English linguistic resources once
func (c *commandContext) resources() (*refinery.Resources, error) {
	c.resourcesOnce.Do(func() {
		c.english, c.resourcesErr = linguistics.LoadEnglish(linguistics.Options{
			StopWords: c.config.Refinery.StopWords,
			Logger:    c.logger,
		})
	})
	if c.resourcesErr != nil {
		return nil, c.resourcesErr
	}
	return c.english.Resources(), nil
}

func (c *commandContext) pipeline() (*refinery.Pipeline, error) {
	resources, err := c.resources()
	if err != nil {
		return nil, err
	}
	return refinery.NewPipeline(c.config.Refinery.Version, resources)
}

func (c *commandContext) parserFactory() *parsers.ParserFactory {
	cfg := parsers.DefaultParserConfig()
	cfg.MaxFileSize = c.config.MaxFileSizeBytes()
	cfg.TrimWhitespace = c.config.Parser.TrimWhitespace
	cfg.SkipEmptyRows = c.config.Parser.SkipEmptyRows
	return parsers.NewParserFactory(cfg)
}

func (c *commandContext) storage() (*storage.LocalStorage, error) {
	return storage.NewLocalStorage(c.config.Storage.BasePath, c.logger)
}

func (c *commandContext) cleaningConfig() cleaning.Config {
	return cleaning.Config{
		TextColumn:     c.config.Refinery.TextColumn,
		OutputColumn:   c.config.Refinery.OutputColumn,
		Workers:        c.config.Refinery.Workers,
		DropDuplicates: c.config.Refinery.DropDuplicates,
		LockRefresh:    c.lockTTL() / 3,
	}
}

func (c *commandContext) lockTTL() time.Duration {
	if c.config.Cache.LockTTLSeconds <= 0 {
		return cache.DefaultLockTTL
	}
	return time.Duration(c.config.Cache.LockTTLSeconds) * time.Second
}

// withRuns opens the run database, migrates it and hands over the repository
func (c *commandContext) withRuns(fn func(*repositories.CleanRunRepository) error) error {
	if err := c.config.ValidateDatabase(); err != nil {
		return err
	}

	db, err := database.NewPostgresDB(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		return err
	}

	return fn(repositories.NewCleanRunRepository(db.DB, c.logger))
}

// withLocker connects to redis and hands over a dataset locker
func (c *commandContext) withLocker(fn func(*cache.RedisLocker) error) error {
	redisCache, err := cache.NewRedisCache(&c.config.Cache, c.logger)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	return fn(cache.NewRedisLocker(redisCache, c.lockTTL()))
}
