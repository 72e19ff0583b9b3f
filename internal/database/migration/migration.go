package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_guides",
		SQL: `CREATE TABLE IF NOT EXISTS guides (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   TEXT        NOT NULL,
  title       TEXT        NOT NULL,
  content     TEXT        NOT NULL,
  status      TEXT        NOT NULL CHECK (status IN ('draft', 'pending', 'approved', 'rejected')),
  version     INTEGER     NOT NULL CHECK (version >= 1),
  created_by  TEXT        NOT NULL,
  approved_by TEXT,
  approved_at TIMESTAMPTZ,
  deleted_at  TIMESTAMPTZ,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_guides_tenant",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_guides_tenant ON guides (tenant_id, created_at DESC);`,
	},
	{
		Name: "create_index_guides_tenant_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_guides_tenant_status ON guides (tenant_id, status);`,
	},
	{
		Name: "create_table_guide_history",
		SQL: `CREATE TABLE IF NOT EXISTS guide_history (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  seq         BIGSERIAL   NOT NULL,
  tenant_id   TEXT        NOT NULL,
  guide_id    UUID        NOT NULL,
  version     INTEGER     NOT NULL CHECK (version >= 1),
  content     TEXT        NOT NULL,
  status      TEXT        NOT NULL,
  change_type TEXT        NOT NULL CHECK (change_type IN ('edit', 'submit', 'approve', 'reject', 'rollback')),
  changed_by  TEXT        NOT NULL,
  changed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		// No foreign key to guides: history outlives the parent row and must
		// stay queryable after the guide is tombstoned.
		Name: "create_index_guide_history_lookup",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_guide_history_lookup ON guide_history (tenant_id, guide_id, seq DESC);`,
	},
	{
		// Only content-bearing entries claim a version; submit/approve/reject
		// snapshots share the version of the preceding edit or rollback.
		Name: "create_unique_index_guide_history_version",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_guide_history_content_version
  ON guide_history (guide_id, version)
  WHERE change_type IN ('edit', 'rollback');`,
	},
}

// EnsureMigrated checks if the 'guides' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.guides') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
