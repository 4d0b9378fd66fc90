package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS appointment_types (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	color TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS health_plans (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	color TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	title               TEXT NOT NULL,
	start_time          TIMESTAMPTZ NOT NULL,
	end_time            TIMESTAMPTZ NOT NULL,
	status              TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
	patient_id          TEXT NOT NULL DEFAULT '',
	patient_name        TEXT NOT NULL DEFAULT '',
	appointment_type_id TEXT NOT NULL DEFAULT '',
	health_plan_id      TEXT REFERENCES health_plans (id),
	is_private          BOOLEAN NOT NULL DEFAULT false,
	notes               TEXT NOT NULL DEFAULT '',
	color               TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (end_time > start_time),
	CHECK (NOT (is_private AND health_plan_id IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS appointments_owner_start_idx ON appointments (owner_id, start_time);

CREATE TABLE IF NOT EXISTS work_hours (
	owner_id     TEXT PRIMARY KEY,
	start_time   TEXT NOT NULL,
	end_time     TEXT NOT NULL,
	days_of_week INTEGER[] NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the scheduling tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
