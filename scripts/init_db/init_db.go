package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"fleet-monitor/simulator/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	ctx := context.Background()

	fmt.Println("Connecting to TimescaleDB...")
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Connection failed: %v\n\nMake sure TimescaleDB is running:\n  docker-compose up -d timescaledb", err)
	}
	defer conn.Close(ctx)
	fmt.Println("✓ Connected")

	step1_extensions(ctx, conn)
	step2_telemetry_table(ctx, conn)
	step3_alerts_table(ctx, conn)
	step4_recall_table(ctx, conn)
	step5_indexes(ctx, conn)
	step6_verify(ctx, conn)

	fmt.Println("\n✅ Database initialised successfully")
	fmt.Println("   Run next: DB_ENABLED=true go run ./cmd/simulator")
}

// ─────────────────────────────────────────────────────────────
// Step 1: Extensions
// ─────────────────────────────────────────────────────────────
func step1_extensions(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 1: Extensions ──────────────────────────")

	execOrFatal(ctx, conn,
		"CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;",
		"timescaledb extension",
	)
}

// ─────────────────────────────────────────────────────────────
// Step 2: simulated_telemetry table
// ─────────────────────────────────────────────────────────────
func step2_telemetry_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 2: simulated_telemetry table ───────────")

	// Columns must match store.telemetryColumns
	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS simulated_telemetry (
			timestamp            TIMESTAMPTZ      NOT NULL,
			run_id               TEXT             NOT NULL,
			vehicle_id           BIGINT           NOT NULL,
			plate                TEXT             NOT NULL,
			leg                  TEXT             NOT NULL,
			tick                 INTEGER          NOT NULL,

			latitude             DOUBLE PRECISION NOT NULL,
			longitude            DOUBLE PRECISION NOT NULL,

			speed_kmh            DOUBLE PRECISION NOT NULL,
			-- fuel has no floor in the simulation; negative values are kept
			fuel_pct             DOUBLE PRECISION NOT NULL,
			cargo_temp_celsius   DOUBLE PRECISION NOT NULL,

			-- ON_TRIP | MAINTENANCE
			status               TEXT             NOT NULL,

			raw_payload          JSONB
		);
	`, "simulated_telemetry table created")

	execOrFatal(ctx, conn, `
		SELECT create_hypertable(
			'simulated_telemetry',
			'timestamp',
			if_not_exists => TRUE
		);
	`, "simulated_telemetry converted to hypertable")
}

// ─────────────────────────────────────────────────────────────
// Step 3: simulated_alerts table
// ─────────────────────────────────────────────────────────────
func step3_alerts_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 3: simulated_alerts table ──────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS simulated_alerts (
			id               BIGSERIAL        PRIMARY KEY,
			run_id           TEXT             NOT NULL,
			vehicle_id       BIGINT           NOT NULL,

			-- Must exactly match domain.AlertType constants
			alert_type       TEXT             NOT NULL,
			severity         TEXT             NOT NULL,
			triggered_value  DOUBLE PRECISION,

			created_at       TIMESTAMPTZ      NOT NULL DEFAULT NOW(),

			CONSTRAINT chk_alert_type CHECK (
				alert_type IN ('CARGO_TEMP_HIGH', 'LOW_FUEL')
			),
			CONSTRAINT chk_severity CHECK (
				severity IN ('INFO', 'WARNING', 'CRITICAL')
			)
		);
	`, "simulated_alerts table created")
}

// ─────────────────────────────────────────────────────────────
// Step 4: recall_outcomes table
// ─────────────────────────────────────────────────────────────
func step4_recall_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 4: recall_outcomes table ───────────────")

	// Columns must match store.recallColumns
	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS recall_outcomes (
			id          BIGSERIAL        PRIMARY KEY,
			run_id      TEXT             NOT NULL,
			vehicle_id  BIGINT           NOT NULL,
			plate       TEXT             NOT NULL,

			-- Position reset outcome only
			succeeded   BOOLEAN          NOT NULL,
			error       TEXT,

			depot_lat   DOUBLE PRECISION NOT NULL,
			depot_lng   DOUBLE PRECISION NOT NULL,
			created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);
	`, "recall_outcomes table created")
}

// ─────────────────────────────────────────────────────────────
// Step 5: Indexes
// ─────────────────────────────────────────────────────────────
func step5_indexes(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 5: Indexes ─────────────────────────────")

	indexes := []struct {
		name string
		sql  string
		why  string
	}{
		{
			name: "idx_sim_telemetry_run",
			sql: `CREATE INDEX IF NOT EXISTS idx_sim_telemetry_run
				  ON simulated_telemetry (run_id, tick);`,
			why: "query: replay one simulation run",
		},
		{
			name: "idx_sim_telemetry_vehicle_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_sim_telemetry_vehicle_time
				  ON simulated_telemetry (vehicle_id, timestamp DESC);`,
			why: "query: telemetry history for one vehicle",
		},
		{
			name: "idx_sim_alerts_run",
			sql: `CREATE INDEX IF NOT EXISTS idx_sim_alerts_run
				  ON simulated_alerts (run_id, created_at DESC);`,
			why: "query: alerts raised during a run",
		},
		{
			name: "idx_recall_failed",
			sql: `CREATE INDEX IF NOT EXISTS idx_recall_failed
				  ON recall_outcomes (run_id)
				  WHERE NOT succeeded;`,
			why: "query: failed vehicles of a recall (partial index)",
		},
	}

	for _, idx := range indexes {
		execOrFatal(ctx, conn, idx.sql,
			fmt.Sprintf("%-32s ← %s", idx.name, idx.why),
		)
	}
}

// ─────────────────────────────────────────────────────────────
// Step 6: Verify everything was created
// ─────────────────────────────────────────────────────────────
func step6_verify(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 6: Verification ────────────────────────")

	tables := []string{"simulated_telemetry", "simulated_alerts", "recall_outcomes"}
	for _, table := range tables {
		var exists bool
		err := conn.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil || !exists {
			log.Fatalf("Table %s was not created: %v", table, err)
		}
		fmt.Printf("  ✓ table: %s\n", table)
	}

	var hypertableName string
	err := conn.QueryRow(ctx, `
		SELECT hypertable_name
		FROM timescaledb_information.hypertables
		WHERE hypertable_name = 'simulated_telemetry'
	`).Scan(&hypertableName)
	if err != nil {
		log.Fatalf("simulated_telemetry is not a hypertable: %v", err)
	}
	fmt.Printf("  ✓ hypertable: %s (time partitioned)\n", hypertableName)
}

// execOrFatal runs a SQL statement and prints result or exits on error
func execOrFatal(ctx context.Context, conn *pgx.Conn, sql, label string) {
	_, err := conn.Exec(ctx, sql)
	if err != nil {
		log.Fatalf("FAILED: %s\nError: %v\nSQL: %s", label, err, sql)
	}
	fmt.Printf("  ✓ %s\n", label)
}
