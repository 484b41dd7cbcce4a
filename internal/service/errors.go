package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Business-rule violations surfaced to the route layer. All of them are
// detected inside the owning transaction, which rolls back entirely;
// no partial state is ever committed. None are retryable without new input.
var (
	ErrCajaYaAbierta       = errors.New("ya existe una caja abierta para este usuario")
	ErrSinCajaAbierta      = errors.New("no hay sesion de caja abierta")
	ErrMontoInvalido       = errors.New("el monto debe ser un numero no negativo")
	ErrDeudaNoEncontrada   = errors.New("deuda no encontrada")
	ErrGastoNoEncontrado   = errors.New("gasto no encontrado")
	ErrYaSaldada           = errors.New("la obligacion ya esta saldada")
	ErrVentaSinItems       = errors.New("la venta debe incluir al menos un item")
	ErrVentaNoEncontrada   = errors.New("venta no encontrada")
	ErrCreditoSinCliente   = errors.New("una venta a credito requiere un cliente")
	ErrClienteNoEncontrado = errors.New("cliente no encontrado")
	ErrStockConcurrente    = errors.New("el stock fue modificado por otra operacion; reintente la venta")
	ErrClienteConDeuda     = errors.New("el cliente tiene deudas pendientes y no puede eliminarse")
)

// PagoExcedeSaldoError rejects a payment larger than the outstanding balance.
type PagoExcedeSaldoError struct {
	Saldo decimal.Decimal
	Monto decimal.Decimal
}

func (e *PagoExcedeSaldoError) Error() string {
	return fmt.Sprintf("el pago de %s excede el saldo pendiente de %s",
		e.Monto.StringFixed(2), e.Saldo.StringFixed(2))
}

// ProductoNoEncontradoError names the missing product id.
type ProductoNoEncontradoError struct {
	ProductoID string
}

func (e *ProductoNoEncontradoError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductoID)
}

// StockInsuficienteError reports available vs. requested quantity.
type StockInsuficienteError struct {
	Producto   string
	Disponible int
	Solicitado int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s: disponible %d, solicitado %d",
		e.Producto, e.Disponible, e.Solicitado)
}

// CreditoInsuficienteError reports available credit vs. the sale total.
type CreditoInsuficienteError struct {
	Disponible decimal.Decimal
	Solicitado decimal.Decimal
}

func (e *CreditoInsuficienteError) Error() string {
	return fmt.Sprintf("credito insuficiente: disponible %s, solicitado %s",
		e.Disponible.StringFixed(2), e.Solicitado.StringFixed(2))
}
