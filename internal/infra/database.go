package infra

import (
	"fmt"

	"smartpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations runs AutoMigrate plus schema patches. Shared with the
// integration test harness so both paths build the exact same schema.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on PostgreSQL < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Deuda{},
		&model.Abono{},
		&model.Gasto{},
		&model.PagoGasto{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running on an already
// patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open drawer per operator. The application checks before
		// opening, but only this index makes the invariant hold under
		// concurrent opens and across instances.
		{"partial unique index on open sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'ux_sesion_cajas_usuario_abierta') THEN
    CREATE UNIQUE INDEX ux_sesion_cajas_usuario_abierta
        ON sesion_cajas (usuario_id)
        WHERE estado = 'abierta';
  END IF;
END $$`},
		// Atomic ticket numbering for sales.
		{"ticket number sequence",
			`CREATE SEQUENCE IF NOT EXISTS ventas_numero_ticket_seq START 1`},
		// Movements are append-only per session; the close computation and
		// session detail both scan by session in insertion order.
		{"movimientos per-session index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimiento_cajas_sesion_created') THEN
    CREATE INDEX idx_movimiento_cajas_sesion_created
        ON movimiento_cajas (sesion_caja_id, created_at);
  END IF;
END $$`},
		// The mora sweep filters on estado + fecha_vencimiento.
		{"deudas sweep index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_deudas_pendiente_vencimiento') THEN
    CREATE INDEX idx_deudas_pendiente_vencimiento
        ON deudas (fecha_vencimiento)
        WHERE estado = 'pendiente' AND fecha_vencimiento IS NOT NULL;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
