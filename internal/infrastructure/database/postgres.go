package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	"github.com/alejandroruanova/text-refinery/internal/pkg/config"
)

// PostgresDB wraps the GORM database connection
type PostgresDB struct {
	DB     *gorm.DB
	logger *slog.Logger
}

// NewPostgresDB creates a new PostgreSQL connection using GORM
func NewPostgresDB(cfg *config.DatabaseConfig, appLogger *slog.Logger) (*PostgresDB, error) {
	if appLogger == nil {
		appLogger = slog.Default()
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := Open(dsn, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MinConnections)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Minute)

	// Ping to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("database connection established",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
	)

	return &PostgresDB{
		DB:     db,
		logger: appLogger,
	}, nil
}

// Open opens a GORM connection without pool tuning. Tests use it with
// container DSNs.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger(logLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

func gormLogger(level string) logger.Interface {
	switch level {
	case "debug", "info":
		return logger.Default.LogMode(logger.Info)
	case "warn":
		return logger.Default.LogMode(logger.Warn)
	case "error":
		return logger.Default.LogMode(logger.Error)
	default:
		return logger.Default.LogMode(logger.Silent)
	}
}

// Close closes the database connection
func (db *PostgresDB) Close() error {
	db.logger.Info("closing database connection")
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health returns health status of the database
func (db *PostgresDB) Health(ctx context.Context) map[string]interface{} {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return map[string]interface{}{
			"status": "down",
			"error":  err.Error(),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return map[string]interface{}{
			"status": "down",
			"error":  err.Error(),
		}
	}

	stats := sqlDB.Stats()

	return map[string]interface{}{
		"status":              "up",
		"max_open_conns":      stats.MaxOpenConnections,
		"open_connections":    stats.OpenConnections,
		"in_use":              stats.InUse,
		"idle":                stats.Idle,
		"wait_count":          stats.WaitCount,
		"wait_duration":       stats.WaitDuration.String(),
		"max_idle_closed":     stats.MaxIdleClosed,
		"max_lifetime_closed": stats.MaxLifetimeClosed,
	}
}

// Models lists every table the service owns
func Models() []interface{} {
	return []interface{}{
		&domain.CleanRun{},
	}
}

// AutoMigrate runs automatic migrations for the given models, or for
// Models() when none are given
func (db *PostgresDB) AutoMigrate(models ...interface{}) error {
	if len(models) == 0 {
		models = Models()
	}

	db.logger.Info("running auto migrations", slog.Int("models", len(models)))
	if err := db.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	db.logger.Info("migrations completed successfully")
	return nil
}
