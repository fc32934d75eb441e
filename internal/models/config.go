package models

import "time"

// Config represents the application configuration
type Config struct {
	Gateway   GatewayConfig
	Database  DatabaseConfig
	Dashboard DashboardConfig
	Server    ServerConfig
}

// GatewayConfig selects and configures the remote data gateway
type GatewayConfig struct {
	Backend        string // "supabase" or "sqlite"
	URL            string
	ServiceKey     string
	RequestTimeout time.Duration
}

// DatabaseConfig holds database connection settings for the SQLite backend
type DatabaseConfig struct {
	Path             string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	CreateDummyUsers bool
}

// DashboardConfig holds the data-view settings
type DashboardConfig struct {
	RelationsFile   string
	AccountPageSize int
	RowLimit        int
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}
