package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarPagoRequest is shared by abonos a deudas and pagos de gastos.
type RegistrarPagoRequest struct {
	Monto      decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	MetodoPago string          `json:"metodo_pago" validate:"required"`
	Nota       *string         `json:"nota"`
}

type CrearGastoRequest struct {
	Proveedor        string          `json:"proveedor"   validate:"required,min=2"`
	Descripcion      string          `json:"descripcion" validate:"required,min=3"`
	MontoTotal       decimal.Decimal `json:"monto_total" validate:"required,gt=0"`
	FechaVencimiento *string         `json:"fecha_vencimiento"` // YYYY-MM-DD
}

// DeudaFilter is bound from query string of GET /v1/deudas.
type DeudaFilter struct {
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Estado    string `form:"estado"` // pendiente | vencida | pagada | all
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type GastoFilter struct {
	Estado string `form:"estado"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID         string          `json:"id"`
	Monto      decimal.Decimal `json:"monto"`
	MetodoPago string          `json:"metodo_pago"`
	Nota       *string         `json:"nota,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type DeudaResponse struct {
	ID               string          `json:"id"`
	ClienteID        string          `json:"cliente_id"`
	Cliente          string          `json:"cliente,omitempty"`
	VentaID          string          `json:"venta_id"`
	MontoTotal       decimal.Decimal `json:"monto_total"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	Estado           string          `json:"estado"`
	FechaVencimiento *string         `json:"fecha_vencimiento,omitempty"`
	Abonos           []PagoResponse  `json:"abonos,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

type GastoResponse struct {
	ID               string          `json:"id"`
	Proveedor        string          `json:"proveedor"`
	Descripcion      string          `json:"descripcion"`
	MontoTotal       decimal.Decimal `json:"monto_total"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	Estado           string          `json:"estado"`
	FechaVencimiento *string         `json:"fecha_vencimiento,omitempty"`
	Pagos            []PagoResponse  `json:"pagos,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

type DeudaListResponse struct {
	Data  []DeudaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type GastoListResponse struct {
	Data  []GastoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
