package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de pago de una venta. "credito" only transitions to "pagada" via
// the settlement cascade when the linked Deuda reaches zero balance.
const (
	PagoPagada  = "pagada"
	PagoCredito = "credito"
)

// Venta is the sale header. Totals are derived server-side from current unit
// prices, never trusted from the client.
type Venta struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket int        `gorm:"uniqueIndex;not null"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	ClienteID    *uuid.UUID `gorm:"type:uuid;index"`
	// SesionCajaID is nil for sales registered without an open drawer
	// (administrative sales); a valid state, not an error.
	SesionCajaID   *uuid.UUID      `gorm:"type:uuid;index"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoPagado    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoPendiente decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago     string          `gorm:"type:varchar(30);not null"`
	EstadoPago     string          `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Deuda   *Deuda      `gorm:"foreignKey:VentaID"`
}

// VentaItem snapshots the unit price at sale time.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
