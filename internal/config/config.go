package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, assembled once at startup
// from the environment (plus an optional .env file).
type Config struct {
	Server  ServerConfig
	Engine  EngineConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	GRPCPort       int
	MetricsPort    int
	PProfPort      int
	EnablePProf    bool
	MaxMessageSize int
}

// EngineConfig holds matching engine configuration: the single instrument
// it matches, its tick band, and sizing hints for the node pool and id
// index.
type EngineConfig struct {
	Instrument     string
	MinTick        int32
	MaxTick        int32
	ExpectedOrders int
	MaxOrderID     uint64
	DepthLevels    int
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool
}

// LoadConfig loads configuration from environment variables, first loading
// a .env file from the working directory if one is present. Variables
// already set in the environment take precedence over the .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	cfg := &Config{
		Server:  loadServerConfig(),
		Engine:  loadEngineConfig(),
		Logging: loadLoggingConfig(),
		Metrics: loadMetricsConfig(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		GRPCPort:       getEnvInt("MATCHD_GRPC_PORT", 50051),
		MetricsPort:    getEnvInt("MATCHD_METRICS_PORT", 9090),
		PProfPort:      getEnvInt("MATCHD_PPROF_PORT", 6060),
		EnablePProf:    getEnvBool("MATCHD_ENABLE_PPROF", false),
		MaxMessageSize: getEnvInt("MATCHD_MAX_MESSAGE_SIZE", 4*1024*1024), // 4MB
	}
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		Instrument:     getEnvString("MATCHD_INSTRUMENT", "BTC-USD"),
		MinTick:        int32(getEnvInt("MATCHD_MIN_TICK", 900)),
		MaxTick:        int32(getEnvInt("MATCHD_MAX_TICK", 1100)),
		ExpectedOrders: getEnvInt("MATCHD_EXPECTED_ORDERS", 1_000_000),
		MaxOrderID:     uint64(getEnvInt("MATCHD_MAX_ORDER_ID", 10_000_000)),
		DepthLevels:    getEnvInt("MATCHD_DEPTH_LEVELS", 25),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  getEnvString("MATCHD_LOG_LEVEL", "info"),
		Format: getEnvString("MATCHD_LOG_FORMAT", "text"),
		File:   getEnvString("MATCHD_LOG_FILE", ""), // empty = stdout only
	}
}

func loadMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: getEnvBool("MATCHD_METRICS_ENABLED", true),
	}
}

// Helper functions for environment variable parsing.

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		switch strings.ToLower(value) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	}
	return defaultValue
}

// Validate checks invariants the engine construction depends on: a
// well-formed tick band and a non-trivial pool sizing hint.
func (c *Config) Validate() error {
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC port: %d", c.Server.GRPCPort)
	}
	if c.Engine.MinTick > c.Engine.MaxTick {
		return fmt.Errorf("invalid tick band [%d, %d]", c.Engine.MinTick, c.Engine.MaxTick)
	}
	if c.Engine.ExpectedOrders <= 0 {
		return fmt.Errorf("invalid expected order count: %d", c.Engine.ExpectedOrders)
	}
	if c.Engine.Instrument == "" {
		return fmt.Errorf("instrument must not be empty")
	}
	return nil
}

// String returns a safe, compact representation for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Server{GRPC:%d, Metrics:%d}, Engine{Instrument:%s, Ticks:[%d,%d]}",
		c.Server.GRPCPort, c.Server.MetricsPort,
		c.Engine.Instrument, c.Engine.MinTick, c.Engine.MaxTick,
	)
}
