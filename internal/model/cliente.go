package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente stores customers with credit support.
// SaldoDeudor is a denormalized mirror of SUM(deudas abiertas.saldo_pendiente)
// for this customer; it is adjusted in the same transaction as every deuda
// mutation. SaldoDeudor <= LimiteCredito is checked before authorizing a new
// credit sale, not globally enforced.
type Cliente struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string          `gorm:"index;not null"`
	Documento     *string         `gorm:"uniqueIndex"`
	Telefono      *string
	Email         *string
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoDeudor   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Puntos        int             `gorm:"not null;default:0"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
