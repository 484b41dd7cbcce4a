package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados compartidos por Deuda y Gasto.
const (
	ObligacionPendiente = "pendiente"
	ObligacionVencida   = "vencida"
	ObligacionPagada    = "pagada"
)

// Deuda is a customer's outstanding balance, created alongside a credit sale.
// Invariant: SaldoPendiente = MontoTotal - SUM(abonos), always >= 0;
// Estado = "pagada" iff SaldoPendiente = 0. Mutated only by abono
// application; never deleted while outstanding.
type Deuda struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	VentaID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	MontoTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoPendiente   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	FechaVencimiento *time.Time      `gorm:"index"`
	CreatedAt        time.Time

	Abonos  []Abono  `gorm:"foreignKey:DeudaID"`
	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

// Abono is one partial settlement against a Deuda. Immutable once created.
type Abono struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DeudaID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID  uuid.UUID       `gorm:"type:uuid;not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago string          `gorm:"type:varchar(30);not null"`
	Nota       *string
	CreatedAt  time.Time
}
