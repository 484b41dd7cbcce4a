package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre        string          `json:"nombre" validate:"required,min=2"`
	Documento     *string         `json:"documento"`
	Telefono      *string         `json:"telefono"`
	Email         *string         `json:"email" validate:"omitempty,email"`
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
}

type ActualizarClienteRequest struct {
	Nombre        string           `json:"nombre"`
	Telefono      *string          `json:"telefono"`
	Email         *string          `json:"email" validate:"omitempty,email"`
	LimiteCredito *decimal.Decimal `json:"limite_credito" validate:"omitempty,min=0"`
}

type ClienteFilter struct {
	Nombre string `form:"nombre"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Documento     *string         `json:"documento,omitempty"`
	Telefono      *string         `json:"telefono,omitempty"`
	Email         *string         `json:"email,omitempty"`
	LimiteCredito decimal.Decimal `json:"limite_credito"`
	SaldoDeudor   decimal.Decimal `json:"saldo_deudor"`
	// CreditoDisponible = LimiteCredito - SaldoDeudor
	CreditoDisponible decimal.Decimal `json:"credito_disponible"`
	Puntos            int             `json:"puntos"`
	Activo            bool            `json:"activo"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
