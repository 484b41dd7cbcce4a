package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is a payable owed to a supplier, symmetric to Deuda.
// Estado uses the same pendiente/vencida/pagada set, but gastos are never
// swept to "vencida" by the mora cron: supplier payables are unscheduled.
type Gasto struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Proveedor        string          `gorm:"not null"`
	Descripcion      string          `gorm:"not null"`
	MontoTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoPendiente   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	FechaVencimiento *time.Time
	CreatedAt        time.Time

	Pagos []PagoGasto `gorm:"foreignKey:GastoID"`
}

// PagoGasto is one partial settlement against a Gasto. Immutable once created.
type PagoGasto struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GastoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID  uuid.UUID       `gorm:"type:uuid;not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago string          `gorm:"type:varchar(30);not null"`
	Nota       *string
	CreatedAt  time.Time
}
