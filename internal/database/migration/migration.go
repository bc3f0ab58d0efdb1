// Package migration creates the fuel record schema when it is missing.
package migration

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// SentinelTable is checked to decide whether the schema already exists.
const SentinelTable = "public.fuel_records"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_fuel_records",
		SQL: `CREATE TABLE IF NOT EXISTS fuel_records (
  id                UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id           TEXT          NOT NULL,
  station_name      TEXT,
  station_brand     TEXT,
  fuel_type         TEXT,
  amount            NUMERIC(10,2) CHECK (amount > 0),
  liters            NUMERIC(10,3) CHECK (liters > 0),
  price_per_liter   NUMERIC(15,3),
  receipt_image_url TEXT          NOT NULL,
  extracted_data    TEXT,
  location          TEXT,
  purchase_date     TIMESTAMPTZ,
  created_at        TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_fuel_records_user_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_fuel_records_user_created_at ON fuel_records (user_id, created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_fuel_records_purchase_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_fuel_records_purchase_date ON fuel_records (user_id, purchase_date);`,
	},
}

// EnsureMigrated runs every step when the sentinel table does not exist yet.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	log := zap.L().With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", SentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return eris.Wrap(err, "check sentinel table")
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return eris.Wrapf(err, "migration step %s failed", step.Name)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
