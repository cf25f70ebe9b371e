package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string
	Role    string // api, admin; stamped into clickhouse client info

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// TxRetries bounds how often a transaction is replayed after a serialization or deadlock abort
	TxRetries int

	ConnectAttempts int           // default 20
	PingTimeout     time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}
