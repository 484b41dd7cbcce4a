package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial  decimal.Decimal `json:"monto_inicial" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type CerrarCajaRequest struct {
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
	Observaciones  *string         `json:"observaciones"`
}

type MovimientoManualRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=ingreso egreso"`
	MetodoPago  string          `json:"metodo_pago" validate:"required"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

// HistorialCajaFilter is bound from query string of GET /v1/caja/historial.
type HistorialCajaFilter struct {
	Desde     string `form:"desde"`      // YYYY-MM-DD
	Hasta     string `form:"hasta"`      // YYYY-MM-DD
	UsuarioID string `form:"usuario_id"` // optional
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoCajaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	MetodoPago  string          `json:"metodo_pago"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	CreatedAt   string          `json:"created_at"`
}

// ResumenCaja carries the running totals of an open session.
// SaldoEfectivo counts only movimientos en efectivo; SaldoGeneral counts all
// methods. TotalIngresos / TotalEgresos are method-agnostic.
type ResumenCaja struct {
	TotalIngresos decimal.Decimal `json:"total_ingresos"`
	TotalEgresos  decimal.Decimal `json:"total_egresos"`
	SaldoEfectivo decimal.Decimal `json:"saldo_efectivo"`
	SaldoGeneral  decimal.Decimal `json:"saldo_general"`
}

type SesionCajaResponse struct {
	ID             string                   `json:"id"`
	UsuarioID      string                   `json:"usuario_id"`
	MontoInicial   decimal.Decimal          `json:"monto_inicial"`
	MontoEsperado  *decimal.Decimal         `json:"monto_esperado,omitempty"`
	MontoDeclarado *decimal.Decimal         `json:"monto_declarado,omitempty"`
	Desvio         *decimal.Decimal         `json:"desvio,omitempty"`
	Estado         string                   `json:"estado"`
	Observaciones  *string                  `json:"observaciones,omitempty"`
	Resumen        *ResumenCaja             `json:"resumen,omitempty"`
	Movimientos    []MovimientoCajaResponse `json:"movimientos,omitempty"`
	OpenedAt       string                   `json:"opened_at"`
	ClosedAt       *string                  `json:"closed_at,omitempty"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
