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

// CobroService settles outstanding obligations: abonos against deudas de
// clientes and pagos against gastos a proveedores. Both sides run the same
// payment algorithm; the deuda side additionally cascades into the customer
// mirror balance and the originating sale.
type CobroService interface {
	RegistrarAbono(ctx context.Context, usuarioID, deudaID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.DeudaResponse, error)
	RegistrarPagoGasto(ctx context.Context, usuarioID, gastoID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.GastoResponse, error)
	CrearGasto(ctx context.Context, req dto.CrearGastoRequest) (*dto.GastoResponse, error)
	ObtenerDeuda(ctx context.Context, id uuid.UUID) (*dto.DeudaResponse, error)
	ObtenerGasto(ctx context.Context, id uuid.UUID) (*dto.GastoResponse, error)
	ListarDeudas(ctx context.Context, filter dto.DeudaFilter) (*dto.DeudaListResponse, error)
	ListarGastos(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error)
	// MarcarVencidas sweeps pendiente → vencida for every deuda past its due
	// date and returns the debts it flipped. Gastos are left alone: supplier
	// payables carry no enforcement schedule.
	MarcarVencidas(ctx context.Context) ([]model.Deuda, error)
}

type cobroService struct {
	deudas   repository.DeudaRepository
	gastos   repository.GastoRepository
	clientes repository.ClienteRepository
	ventas   repository.VentaRepository
	caja     CajaService
}

func NewCobroService(deudas repository.DeudaRepository, gastos repository.GastoRepository, clientes repository.ClienteRepository, ventas repository.VentaRepository, caja CajaService) CobroService {
	return &cobroService{deudas: deudas, gastos: gastos, clientes: clientes, ventas: ventas, caja: caja}
}

// ── Abonos a deudas ──────────────────────────────────────────────────────────

func (s *cobroService) RegistrarAbono(ctx context.Context, usuarioID, deudaID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.DeudaResponse, error) {
	txErr := runTx(ctx, s.deudas.DB(), func(tx *gorm.DB) error {
		deuda, err := s.deudas.FindByIDTx(tx, deudaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeudaNoEncontrada
			}
			return err
		}

		nuevoSaldo, err := validarPago(deuda.Estado, deuda.SaldoPendiente, req.Monto)
		if err != nil {
			return err
		}

		abono := &model.Abono{
			DeudaID:    deuda.ID,
			UsuarioID:  usuarioID,
			Monto:      req.Monto,
			MetodoPago: req.MetodoPago,
			Nota:       req.Nota,
		}
		if err := s.deudas.CreateAbonoTx(tx, abono); err != nil {
			return err
		}

		deuda.SaldoPendiente = nuevoSaldo
		if nuevoSaldo.IsZero() {
			deuda.Estado = model.ObligacionPagada
		}
		if err := s.deudas.UpdateSaldoTx(tx, deuda); err != nil {
			return err
		}

		// Keep the denormalized customer balance in step with the debt.
		if err := s.clientes.AjustarSaldoDeudorTx(tx, deuda.ClienteID, req.Monto.Neg()); err != nil {
			return err
		}

		// Cascade into the originating sale so its header reflects the
		// remaining credit.
		venta, err := s.ventas.FindByIDTx(tx, deuda.VentaID)
		if err != nil {
			return err
		}
		montoPagado := venta.MontoPagado.Add(req.Monto)
		saldoVenta := venta.SaldoPendiente.Sub(req.Monto)
		estadoPago := venta.EstadoPago
		if saldoVenta.IsZero() {
			estadoPago = model.PagoPagada
		}
		if err := s.ventas.UpdatePagoTx(tx, venta.ID, montoPagado, saldoVenta, estadoPago); err != nil {
			return err
		}

		descripcion := fmt.Sprintf("Abono deuda ticket #%d", venta.NumeroTicket)
		_, err = s.caja.RegistrarMovimientoTx(tx, usuarioID, model.MovAbonoDeuda, req.MetodoPago, req.Monto, descripcion, MovimientoRefs{DeudaID: &deuda.ID, VentaID: &venta.ID})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.ObtenerDeuda(ctx, deudaID)
}

// ── Gastos ───────────────────────────────────────────────────────────────────

func (s *cobroService) CrearGasto(ctx context.Context, req dto.CrearGastoRequest) (*dto.GastoResponse, error) {
	gasto := &model.Gasto{
		Proveedor:      req.Proveedor,
		Descripcion:    req.Descripcion,
		MontoTotal:     req.MontoTotal,
		SaldoPendiente: req.MontoTotal,
		Estado:         model.ObligacionPendiente,
	}
	if req.FechaVencimiento != nil {
		fv, err := time.Parse("2006-01-02", *req.FechaVencimiento)
		if err != nil {
			return nil, fmt.Errorf("fecha_vencimiento invalida: %w", err)
		}
		gasto.FechaVencimiento = &fv
	}
	if err := s.gastos.Create(ctx, gasto); err != nil {
		return nil, err
	}
	resp := gastoToResponse(gasto)
	return &resp, nil
}

func (s *cobroService) RegistrarPagoGasto(ctx context.Context, usuarioID, gastoID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.GastoResponse, error) {
	txErr := runTx(ctx, s.gastos.DB(), func(tx *gorm.DB) error {
		gasto, err := s.gastos.FindByIDTx(tx, gastoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGastoNoEncontrado
			}
			return err
		}

		nuevoSaldo, err := validarPago(gasto.Estado, gasto.SaldoPendiente, req.Monto)
		if err != nil {
			return err
		}

		pago := &model.PagoGasto{
			GastoID:    gasto.ID,
			UsuarioID:  usuarioID,
			Monto:      req.Monto,
			MetodoPago: req.MetodoPago,
			Nota:       req.Nota,
		}
		if err := s.gastos.CreatePagoTx(tx, pago); err != nil {
			return err
		}

		gasto.SaldoPendiente = nuevoSaldo
		if nuevoSaldo.IsZero() {
			gasto.Estado = model.ObligacionPagada
		}
		if err := s.gastos.UpdateSaldoTx(tx, gasto); err != nil {
			return err
		}

		descripcion := fmt.Sprintf("Pago gasto: %s", gasto.Proveedor)
		_, err = s.caja.RegistrarMovimientoTx(tx, usuarioID, model.MovPagoGasto, req.MetodoPago, req.Monto, descripcion, MovimientoRefs{GastoID: &gasto.ID})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.ObtenerGasto(ctx, gastoID)
}

// validarPago enforces the shared payment preconditions and returns the
// obligation's new balance. Overpayments are rejected outright, never
// truncated.
func validarPago(estado string, saldo, monto decimal.Decimal) (decimal.Decimal, error) {
	if estado == model.ObligacionPagada {
		return decimal.Zero, ErrYaSaldada
	}
	if monto.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrMontoInvalido
	}
	if monto.GreaterThan(saldo) {
		return decimal.Zero, &PagoExcedeSaldoError{Saldo: saldo, Monto: monto}
	}
	return saldo.Sub(monto), nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *cobroService) ObtenerDeuda(ctx context.Context, id uuid.UUID) (*dto.DeudaResponse, error) {
	deuda, err := s.deudas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeudaNoEncontrada
		}
		return nil, err
	}
	resp := deudaToResponse(deuda)
	return &resp, nil
}

func (s *cobroService) ObtenerGasto(ctx context.Context, id uuid.UUID) (*dto.GastoResponse, error) {
	gasto, err := s.gastos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGastoNoEncontrado
		}
		return nil, err
	}
	resp := gastoToResponse(gasto)
	return &resp, nil
}

func (s *cobroService) ListarDeudas(ctx context.Context, filter dto.DeudaFilter) (*dto.DeudaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	deudas, total, err := s.deudas.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DeudaResponse, 0, len(deudas))
	for i := range deudas {
		data = append(data, deudaToResponse(&deudas[i]))
	}
	return &dto.DeudaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *cobroService) ListarGastos(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	gastos, total, err := s.gastos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.GastoResponse, 0, len(gastos))
	for i := range gastos {
		data = append(data, gastoToResponse(&gastos[i]))
	}
	return &dto.GastoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Mora ─────────────────────────────────────────────────────────────────────

func (s *cobroService) MarcarVencidas(ctx context.Context) ([]model.Deuda, error) {
	var afectadas []model.Deuda
	txErr := runTx(ctx, s.deudas.DB(), func(tx *gorm.DB) error {
		var err error
		afectadas, err = s.deudas.MarcarVencidasTx(tx, time.Now())
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return afectadas, nil
}

// ── Mapeo ────────────────────────────────────────────────────────────────────

func deudaToResponse(d *model.Deuda) dto.DeudaResponse {
	resp := dto.DeudaResponse{
		ID:             d.ID.String(),
		ClienteID:      d.ClienteID.String(),
		VentaID:        d.VentaID.String(),
		MontoTotal:     d.MontoTotal,
		SaldoPendiente: d.SaldoPendiente,
		Estado:         d.Estado,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
	if d.Cliente != nil {
		resp.Cliente = d.Cliente.Nombre
	}
	if d.FechaVencimiento != nil {
		fv := d.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &fv
	}
	for i := range d.Abonos {
		a := &d.Abonos[i]
		resp.Abonos = append(resp.Abonos, dto.PagoResponse{
			ID:         a.ID.String(),
			Monto:      a.Monto,
			MetodoPago: a.MetodoPago,
			Nota:       a.Nota,
			CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func gastoToResponse(g *model.Gasto) dto.GastoResponse {
	resp := dto.GastoResponse{
		ID:             g.ID.String(),
		Proveedor:      g.Proveedor,
		Descripcion:    g.Descripcion,
		MontoTotal:     g.MontoTotal,
		SaldoPendiente: g.SaldoPendiente,
		Estado:         g.Estado,
		CreatedAt:      g.CreatedAt.Format(time.RFC3339),
	}
	if g.FechaVencimiento != nil {
		fv := g.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &fv
	}
	for i := range g.Pagos {
		p := &g.Pagos[i]
		resp.Pagos = append(resp.Pagos, dto.PagoResponse{
			ID:         p.ID.String(),
			Monto:      p.Monto,
			MetodoPago: p.MetodoPago,
			Nota:       p.Nota,
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
