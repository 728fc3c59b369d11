package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	// KafkaHost is a comma-separated broker list. Empty disables publishing.
	KafkaHost            string
	KafkaTaskEventsTopic string
	// SweepSchedule is a six-field cron expression. Empty disables the job.
	SweepSchedule           string
	SweepOlderThanDays      int
	SweepIncludePicking     bool
	CancelRequireFullRevert bool
	LogLevel                slog.Level
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Config{
		HTTPPort:             envOr("HTTP_PORT", "8080"),
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               envOr("DB_PORT", "5432"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		DBSslMode:            envOr("DB_SSLMODE", "disable"),
		KafkaHost:            os.Getenv("KAFKA_HOST"),
		KafkaTaskEventsTopic: envOr("KAFKA_TASK_EVENTS_TOPIC", "warehouse.picking-tasks"),
		SweepSchedule:        os.Getenv("SWEEP_SCHEDULE"),
	}

	var err error
	var parseErrs []error
	if cfg.SweepOlderThanDays, err = strconv.Atoi(envOr("SWEEP_OLDER_THAN_DAYS", "14")); err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("SWEEP_OLDER_THAN_DAYS: %w", err))
	}
	if cfg.SweepIncludePicking, err = strconv.ParseBool(envOr("SWEEP_INCLUDE_PICKING", "false")); err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("SWEEP_INCLUDE_PICKING: %w", err))
	}
	if cfg.CancelRequireFullRevert, err = strconv.ParseBool(envOr("CANCEL_REQUIRE_FULL_REVERT", "false")); err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("CANCEL_REQUIRE_FULL_REVERT: %w", err))
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "INFO"))); err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return cfg, errors.Join(parseErrs...)
}

// DSN is the PostgreSQL connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// KafkaBrokers splits KafkaHost into broker addresses.
func (c Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaHost, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}

func OpenDB(c Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(c.DSN()), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
