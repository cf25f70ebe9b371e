// Package modkit wires API modules from shared dependencies and options
package modkit

import (
	"enrollgate/internal/modkit/repokit"
	"enrollgate/internal/platform/config"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/platform/metrics"
	"enrollgate/internal/platform/store"
)

// Deps are the shared dependencies handed to every module
// CH and Metrics are optional and may be nil
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	CH      store.Clickhouse
	Metrics *metrics.Registry
}
