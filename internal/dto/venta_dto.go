package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// ClienteNuevoRequest creates the customer in the same transaction as the
// sale that references it.
type ClienteNuevoRequest struct {
	Nombre        string          `json:"nombre" validate:"required,min=2"`
	Documento     *string         `json:"documento"`
	Telefono      *string         `json:"telefono"`
	Email         *string         `json:"email" validate:"omitempty,email"`
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
}

type RegistrarVentaRequest struct {
	ClienteID    *string              `json:"cliente_id" validate:"omitempty,uuid"`
	ClienteNuevo *ClienteNuevoRequest `json:"cliente_nuevo"`
	Items        []ItemVentaRequest   `json:"items"       validate:"required,min=1,dive"`
	MetodoPago   string               `json:"metodo_pago" validate:"required"`
	EstadoPago   string               `json:"estado_pago" validate:"required,oneof=pagada credito"`
	// MontoPagado applies to credito sales only: the partial amount tendered
	// up front. Ignored for estado_pago=pagada (the total is used).
	MontoPagado *decimal.Decimal `json:"monto_pagado" validate:"omitempty"`
	// FechaVencimiento (YYYY-MM-DD) schedules the resulting deuda for the
	// overdue sweep. Credito sales only; nil leaves the debt unscheduled.
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"`       // YYYY-MM-DD; empty = today
	EstadoPago string `form:"estado_pago"` // pagada | credito | all
	ClienteID  string `form:"cliente_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroTicket   int                 `json:"numero_ticket"`
	Cliente        *string             `json:"cliente,omitempty"`
	Items          []ItemVentaResponse `json:"items"`
	Total          decimal.Decimal     `json:"total"`
	MontoPagado    decimal.Decimal     `json:"monto_pagado"`
	SaldoPendiente decimal.Decimal     `json:"saldo_pendiente"`
	MetodoPago     string              `json:"metodo_pago"`
	EstadoPago     string              `json:"estado_pago"`
	DeudaID        *string             `json:"deuda_id,omitempty"`
	CreatedAt      string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
