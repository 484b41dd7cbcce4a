package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loyalty accrual: one point per puntosDivisor of sale total, immediate-paid
// sales with an identified customer only.
var puntosDivisor = decimal.NewFromInt(1000)

type VentaService interface {
	// Registrar runs the whole sale in one transaction: price resolution,
	// stock and credit gates, ticket numbering, debt creation for credito
	// sales and the drawer ledger entry. Any gate failure rolls back
	// everything.
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	ventas    repository.VentaRepository
	productos repository.ProductoRepository
	clientes  repository.ClienteRepository
	deudas    repository.DeudaRepository
	caja      CajaService
}

func NewVentaService(ventas repository.VentaRepository, productos repository.ProductoRepository, clientes repository.ClienteRepository, deudas repository.DeudaRepository, caja CajaService) VentaService {
	return &ventaService{ventas: ventas, productos: productos, clientes: clientes, deudas: deudas, caja: caja}
}

func (s *ventaService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrVentaSinItems
	}
	if req.EstadoPago == model.PagoCredito && req.ClienteID == nil && req.ClienteNuevo == nil {
		return nil, ErrCreditoSinCliente
	}

	var ventaID uuid.UUID

	txErr := runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		cliente, err := s.resolverCliente(tx, req)
		if err != nil {
			return err
		}

		items, total, err := s.resolverItems(tx, req.Items)
		if err != nil {
			return err
		}

		montoPagado, saldoPendiente, err := partirPago(req, total)
		if err != nil {
			return err
		}

		// The gate is against the full sale total, not the balance left
		// after the anticipo: an up-front payment does not widen the cupo.
		if req.EstadoPago == model.PagoCredito {
			disponible := cliente.LimiteCredito.Sub(cliente.SaldoDeudor)
			if total.GreaterThan(disponible) {
				return &CreditoInsuficienteError{Disponible: disponible, Solicitado: total}
			}
		}

		numero, err := s.ventas.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		sesion, err := s.caja.SesionAbiertaTx(tx, usuarioID)
		if err != nil {
			return err
		}

		venta := &model.Venta{
			NumeroTicket:   numero,
			UsuarioID:      usuarioID,
			Total:          total,
			MontoPagado:    montoPagado,
			SaldoPendiente: saldoPendiente,
			MetodoPago:     req.MetodoPago,
			EstadoPago:     req.EstadoPago,
			Items:          items,
		}
		if cliente != nil {
			venta.ClienteID = &cliente.ID
		}
		if sesion != nil {
			venta.SesionCajaID = &sesion.ID
		}
		if err := s.ventas.Create(ctx, tx, venta); err != nil {
			return err
		}
		ventaID = venta.ID

		if err := s.descontarStock(tx, venta); err != nil {
			return err
		}

		if req.EstadoPago == model.PagoCredito {
			if err := s.crearDeuda(tx, venta, cliente, req.FechaVencimiento); err != nil {
				return err
			}
		}

		if req.EstadoPago == model.PagoPagada && cliente != nil {
			puntos := int(total.Div(puntosDivisor).IntPart())
			if puntos > 0 {
				if err := s.clientes.AjustarPuntosTx(tx, cliente.ID, puntos); err != nil {
					return err
				}
			}
		}

		// Only money actually tendered reaches the drawer. A full-credit
		// sale moves no cash and leaves no ledger entry.
		if montoPagado.GreaterThan(decimal.Zero) {
			descripcion := ticketDescripcion(venta.NumeroTicket)
			if _, err := s.caja.RegistrarMovimientoTx(tx, usuarioID, model.MovVenta, req.MetodoPago, montoPagado, descripcion, MovimientoRefs{VentaID: &venta.ID}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Obtener(ctx, ventaID)
}

// resolverCliente locks the existing customer row or creates the new one
// inside the sale transaction.
func (s *ventaService) resolverCliente(tx *gorm.DB, req dto.RegistrarVentaRequest) (*model.Cliente, error) {
	if req.ClienteNuevo != nil {
		c := &model.Cliente{
			Nombre:        req.ClienteNuevo.Nombre,
			Documento:     req.ClienteNuevo.Documento,
			Telefono:      req.ClienteNuevo.Telefono,
			Email:         req.ClienteNuevo.Email,
			LimiteCredito: req.ClienteNuevo.LimiteCredito,
			SaldoDeudor:   decimal.Zero,
			Activo:        true,
		}
		if err := s.clientes.CreateTx(tx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if req.ClienteID == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*req.ClienteID)
	if err != nil {
		return nil, ErrClienteNoEncontrado
	}
	c, err := s.clientes.FindByIDTx(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	return c, nil
}

// resolverItems locks each product, snapshots its current price and verifies
// stock against the requested quantity. Totals are always derived here,
// client-sent prices are never trusted.
func (s *ventaService) resolverItems(tx *gorm.DB, reqItems []dto.ItemVentaRequest) ([]model.VentaItem, decimal.Decimal, error) {
	items := make([]model.VentaItem, 0, len(reqItems))
	total := decimal.Zero

	for _, it := range reqItems {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, decimal.Zero, &ProductoNoEncontradoError{ProductoID: it.ProductoID}
		}
		p, err := s.productos.FindByIDTx(tx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, &ProductoNoEncontradoError{ProductoID: it.ProductoID}
			}
			return nil, decimal.Zero, err
		}
		if !p.Activo {
			return nil, decimal.Zero, &ProductoNoEncontradoError{ProductoID: it.ProductoID}
		}
		if p.StockActual < it.Cantidad {
			return nil, decimal.Zero, &StockInsuficienteError{Producto: p.Nombre, Disponible: p.StockActual, Solicitado: it.Cantidad}
		}

		subtotal := p.PrecioVenta.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		items = append(items, model.VentaItem{
			ProductoID:     p.ID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: p.PrecioVenta,
			Subtotal:       subtotal,
		})
		total = total.Add(subtotal)
	}
	return items, total, nil
}

// descontarStock applies the conditional decrement per item and writes the
// stock audit trail. The decrement re-checks availability at UPDATE time, so
// a race that slipped past the locked read still cannot drive stock negative.
func (s *ventaService) descontarStock(tx *gorm.DB, venta *model.Venta) error {
	for i := range venta.Items {
		it := &venta.Items[i]
		ok, err := s.productos.DescontarStockTx(tx, it.ProductoID, it.Cantidad)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStockConcurrente
		}

		p, err := s.productos.FindByIDTx(tx, it.ProductoID)
		if err != nil {
			return err
		}
		mov := &model.MovimientoStock{
			ProductoID:    it.ProductoID,
			Tipo:          "venta",
			Cantidad:      -it.Cantidad,
			StockAnterior: p.StockActual + it.Cantidad,
			StockNuevo:    p.StockActual,
			Motivo:        ticketDescripcion(venta.NumeroTicket),
			ReferenciaID:  &venta.ID,
		}
		if err := s.productos.RegistrarMovimientoTx(tx, mov); err != nil {
			return err
		}
	}
	return nil
}

func (s *ventaService) crearDeuda(tx *gorm.DB, venta *model.Venta, cliente *model.Cliente, fechaVencimiento *string) error {
	deuda := &model.Deuda{
		ClienteID:      cliente.ID,
		VentaID:        venta.ID,
		MontoTotal:     venta.SaldoPendiente,
		SaldoPendiente: venta.SaldoPendiente,
		Estado:         model.ObligacionPendiente,
	}
	if fechaVencimiento != nil {
		fv, err := time.Parse("2006-01-02", *fechaVencimiento)
		if err != nil {
			return ErrMontoInvalido
		}
		deuda.FechaVencimiento = &fv
	}
	if err := s.deudas.CreateTx(tx, deuda); err != nil {
		return err
	}
	return s.clientes.AjustarSaldoDeudorTx(tx, cliente.ID, venta.SaldoPendiente)
}

// partirPago splits the sale total into tendered and outstanding amounts.
// A pagada sale tenders the full total; a credito sale tenders the optional
// up-front amount, which must leave a positive balance.
func partirPago(req dto.RegistrarVentaRequest, total decimal.Decimal) (montoPagado, saldoPendiente decimal.Decimal, err error) {
	if req.EstadoPago == model.PagoPagada {
		return total, decimal.Zero, nil
	}
	montoPagado = decimal.Zero
	if req.MontoPagado != nil {
		montoPagado = *req.MontoPagado
	}
	if montoPagado.IsNegative() || montoPagado.GreaterThanOrEqual(total) {
		return decimal.Zero, decimal.Zero, ErrMontoInvalido
	}
	return montoPagado, total.Sub(montoPagado), nil
}

func ticketDescripcion(numero int) string {
	return fmt.Sprintf("Venta ticket #%d", numero)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.ventas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVentaNoEncontrada
		}
		return nil, err
	}
	resp := ventaToResponse(venta)
	return &resp, nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.ventas.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	resp := dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroTicket:   v.NumeroTicket,
		Total:          v.Total,
		MontoPagado:    v.MontoPagado,
		SaldoPendiente: v.SaldoPendiente,
		MetodoPago:     v.MetodoPago,
		EstadoPago:     v.EstadoPago,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
	if v.Cliente != nil {
		nombre := v.Cliente.Nombre
		resp.Cliente = &nombre
	}
	if v.Deuda != nil {
		id := v.Deuda.ID.String()
		resp.DeudaID = &id
	}
	for i := range v.Items {
		it := &v.Items[i]
		item := dto.ItemVentaResponse{
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		}
		if it.Producto != nil {
			item.Producto = it.Producto.Nombre
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
