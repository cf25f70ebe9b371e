package repo

import (
	"context"

	"enrollgate/internal/modkit/repokit"
)

// Schema creates the access tables when missing
// learners and content_units mirror the identity and catalog services and are read-only here;
// no foreign keys point at them because upstream hard deletes must leave orphans to detect
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id        text PRIMARY KEY,
		is_active boolean NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS content_units (
		id                  text PRIMARY KEY,
		kind                text NOT NULL CHECK (kind IN ('course','qbank')),
		status              text NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','published')),
		is_public           boolean NOT NULL DEFAULT false,
		is_requestable      boolean NOT NULL DEFAULT false,
		is_default_unlocked boolean NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS access_requests (
		id              uuid PRIMARY KEY,
		learner_id      text NOT NULL,
		content_unit_id text NOT NULL,
		content_kind    text NOT NULL CHECK (content_kind IN ('course','qbank')),
		reason          text,
		requested_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS access_requests_pair_uq
		ON access_requests (learner_id, content_unit_id)`,
	`CREATE INDEX IF NOT EXISTS access_requests_kind_requested_idx
		ON access_requests (content_kind, requested_at)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
		learner_id      text NOT NULL,
		content_unit_id text NOT NULL,
		content_kind    text NOT NULL CHECK (content_kind IN ('course','qbank')),
		progress        double precision NOT NULL DEFAULT 0,
		last_accessed   timestamptz,
		enrolled_at     timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (learner_id, content_unit_id)
	)`,
}

// EventsTable is the clickhouse audit table resolutions are appended to
const EventsTable = "access_request_events"

// EventsSchema creates EventsTable
const EventsSchema = `CREATE TABLE IF NOT EXISTS ` + EventsTable + ` (
	at              DateTime64(3, 'UTC'),
	action          LowCardinality(String),
	request_id      String,
	learner_id      String,
	content_unit_id String,
	content_kind    LowCardinality(String),
	actor           String,
	reason          String
) ENGINE = MergeTree ORDER BY (content_kind, at)`

// Migrate applies Schema in one transaction
func Migrate(ctx context.Context, db repokit.TxRunner) error {
	return db.Tx(ctx, func(q repokit.Queryer) error {
		for _, stmt := range Schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
