// Package repokit holds the seams repositories and services share
package repokit

import (
	"enrollgate/internal/platform/store"
)

// Queryer is the sql surface a repo is bound to
type Queryer = store.RowQuerier

// TxRunner runs a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row

	// CommandTag is the result of a write
	CommandTag = store.CommandTag
)
