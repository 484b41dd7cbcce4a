package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SesionCaja represents one cash-drawer shift owned by a single operator.
// Estado: "abierta" | "cerrada"
// At most one "abierta" session may exist per usuario, enforced with a
// partial unique index (see infra schema patches), not in-memory state, so
// the invariant survives restarts and multiple instances.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoEsperado is frozen on close: MontoInicial + neto efectivo de movimientos
	MontoEsperado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Desvio = MontoDeclarado - MontoEsperado
	Desvio        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado        string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	Observaciones *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

// Tipos de movimiento de caja. Income-like: ingreso, venta, abono_deuda.
// Expense-like: egreso, pago_gasto.
const (
	MovIngreso    = "ingreso"
	MovEgreso     = "egreso"
	MovVenta      = "venta"
	MovAbonoDeuda = "abono_deuda"
	MovPagoGasto  = "pago_gasto"
)

// Metodos de pago canonicos. MetodoPago is free-form; "efectivo" is the only
// value the cierre formula singles out.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTransferencia = "transferencia"
)

// MovimientoCaja is an immutable entry in the cash-drawer ledger.
// Monto is always non-negative; Tipo decides whether it adds to or subtracts
// from the drawer. Movements are NEVER updated or deleted.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	MetodoPago   string          `gorm:"type:varchar(30);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// Back-references to the originating operation, when any
	VentaID   *uuid.UUID `gorm:"type:uuid"`
	DeudaID   *uuid.UUID `gorm:"type:uuid"`
	GastoID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

// EsIngreso reports whether the movement adds money to the drawer.
func (m *MovimientoCaja) EsIngreso() bool {
	switch m.Tipo {
	case MovIngreso, MovVenta, MovAbonoDeuda:
		return true
	}
	return false
}
