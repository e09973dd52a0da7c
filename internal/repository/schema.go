package repository

import (
	"context"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
)

// Schema statements are idempotent so startup can run them unconditionally.
// The partial unique indexes are load-bearing: they are the storage-level
// backstop for "one active session per plate", "one active session per
// space" and "one open shift per operator".
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS spaces (
		number           int PRIMARY KEY,
		vehicle_class    text NOT NULL,
		state            text NOT NULL DEFAULT 'available',
		last_occupied_at timestamptz
	)`,
	`CREATE TABLE IF NOT EXISTS parking_sessions (
		id             uuid PRIMARY KEY,
		plate          text NOT NULL,
		vehicle_class  text NOT NULL,
		space_number   int NOT NULL REFERENCES spaces(number),
		entry_at       timestamptz NOT NULL,
		exit_at        timestamptz,
		amount         bigint,
		currency       text NOT NULL DEFAULT '',
		payment_state  text NOT NULL DEFAULT 'pending',
		payment_method text,
		operator_id    bigint NOT NULL,
		operator_name  text NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS parking_sessions_active_plate
		ON parking_sessions (plate) WHERE exit_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS parking_sessions_active_space
		ON parking_sessions (space_number) WHERE exit_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS parking_sessions_exit_at
		ON parking_sessions (exit_at DESC)`,
	`CREATE TABLE IF NOT EXISTS tariff_rules (
		id                   bigserial PRIMARY KEY,
		name                 text NOT NULL UNIQUE,
		vehicle_class        text NOT NULL,
		weekday_mask         int NOT NULL,
		start_minute         int NOT NULL,
		end_minute           int NOT NULL,
		first_hour_rate      bigint NOT NULL,
		additional_hour_rate bigint NOT NULL,
		minimum_charge       bigint NOT NULL DEFAULT 0,
		maximum_charge       bigint,
		priority             int NOT NULL DEFAULT 0,
		active               boolean NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS pricing_config (
		id                    int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		grace_minutes         int NOT NULL,
		rounding_minutes      int NOT NULL,
		night_rules_enabled   boolean NOT NULL,
		weekend_rules_enabled boolean NOT NULL,
		currency_code         text NOT NULL,
		updated_at            timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id            uuid PRIMARY KEY,
		operator_id   bigint NOT NULL,
		operator_name text NOT NULL DEFAULT '',
		opened_at     timestamptz NOT NULL,
		opening_cash  bigint NOT NULL,
		closed_at     timestamptz,
		closing_cash  bigint,
		expected_cash bigint,
		variance      bigint,
		state         text NOT NULL DEFAULT 'open',
		notes         text NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS shifts_open_operator
		ON shifts (operator_id) WHERE state = 'open'`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id          bigserial PRIMARY KEY,
		actor_id    bigint NOT NULL,
		actor_name  text NOT NULL DEFAULT '',
		action      text NOT NULL,
		entity_type text NOT NULL,
		entity_id   text NOT NULL,
		amount      bigint,
		details     text NOT NULL DEFAULT '',
		logged_at   timestamptz NOT NULL
	)`,
}

// EnsureSchema creates tables and indexes that do not exist yet.
func EnsureSchema(ctx context.Context, pg *db.Postgres) error {
	for _, stmt := range schemaStatements {
		if _, err := pg.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
