package service

// In-memory repository fakes for unit tests. DB() returns nil so runTx
// executes the callback without a real transaction.

import (
	"context"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Caja ─────────────────────────────────────────────────────────────────────

type cajaRepoStub struct {
	sesiones       map[uuid.UUID]*model.SesionCaja
	movimientos    []model.MovimientoCaja
	lecturasTxMovs int
}

func newCajaRepoStub() *cajaRepoStub {
	return &cajaRepoStub{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *cajaRepoStub) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	s.ID = uuid.New()
	r.sesiones[s.ID] = s
	return nil
}

func (r *cajaRepoStub) abiertaPorUsuario(usuarioID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.UsuarioID == usuarioID && s.Estado == "abierta" {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *cajaRepoStub) FindSesionAbiertaPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return r.abiertaPorUsuario(usuarioID)
}

func (r *cajaRepoStub) FindSesionAbiertaPorUsuarioTx(_ *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return r.abiertaPorUsuario(usuarioID)
}

func (r *cajaRepoStub) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	if s, ok := r.sesiones[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *cajaRepoStub) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *cajaRepoStub) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *cajaRepoStub) ListMovimientos(_ context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	return r.movimientosDeSesion(sesionCajaID), nil
}

func (r *cajaRepoStub) ListMovimientosTx(_ *gorm.DB, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	r.lecturasTxMovs++
	return r.movimientosDeSesion(sesionCajaID), nil
}

func (r *cajaRepoStub) movimientosDeSesion(sesionCajaID uuid.UUID) []model.MovimientoCaja {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionCajaID {
			out = append(out, m)
		}
	}
	return out
}

func (r *cajaRepoStub) ListSesiones(_ context.Context, _ dto.HistorialCajaFilter) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *cajaRepoStub) DB() *gorm.DB { return nil }

// ── Deudas ───────────────────────────────────────────────────────────────────

type deudaRepoStub struct {
	deudas map[uuid.UUID]*model.Deuda
	abonos []model.Abono
}

func newDeudaRepoStub() *deudaRepoStub {
	return &deudaRepoStub{deudas: make(map[uuid.UUID]*model.Deuda)}
}

func (r *deudaRepoStub) CreateTx(_ *gorm.DB, d *model.Deuda) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.deudas[d.ID] = d
	return nil
}

func (r *deudaRepoStub) FindByID(_ context.Context, id uuid.UUID) (*model.Deuda, error) {
	if d, ok := r.deudas[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *deudaRepoStub) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Deuda, error) {
	if d, ok := r.deudas[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *deudaRepoStub) CreateAbonoTx(_ *gorm.DB, a *model.Abono) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	r.abonos = append(r.abonos, *a)
	return nil
}

func (r *deudaRepoStub) UpdateSaldoTx(_ *gorm.DB, d *model.Deuda) error {
	r.deudas[d.ID] = d
	return nil
}

func (r *deudaRepoStub) List(_ context.Context, _ dto.DeudaFilter) ([]model.Deuda, int64, error) {
	var out []model.Deuda
	for _, d := range r.deudas {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *deudaRepoStub) MarcarVencidasTx(_ *gorm.DB, now time.Time) ([]model.Deuda, error) {
	var afectadas []model.Deuda
	for _, d := range r.deudas {
		if d.Estado == model.ObligacionPendiente && d.FechaVencimiento != nil && d.FechaVencimiento.Before(now) {
			d.Estado = model.ObligacionVencida
			afectadas = append(afectadas, *d)
		}
	}
	return afectadas, nil
}

func (r *deudaRepoStub) ExisteDeudaActiva(_ context.Context, clienteID uuid.UUID) (bool, error) {
	for _, d := range r.deudas {
		if d.ClienteID == clienteID && d.Estado != model.ObligacionPagada {
			return true, nil
		}
	}
	return false, nil
}

func (r *deudaRepoStub) DB() *gorm.DB { return nil }

// ── Gastos ───────────────────────────────────────────────────────────────────

type gastoRepoStub struct {
	gastos map[uuid.UUID]*model.Gasto
	pagos  []model.PagoGasto
}

func newGastoRepoStub() *gastoRepoStub {
	return &gastoRepoStub{gastos: make(map[uuid.UUID]*model.Gasto)}
}

func (r *gastoRepoStub) Create(_ context.Context, g *model.Gasto) error {
	g.ID = uuid.New()
	r.gastos[g.ID] = g
	return nil
}

func (r *gastoRepoStub) FindByID(_ context.Context, id uuid.UUID) (*model.Gasto, error) {
	if g, ok := r.gastos[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *gastoRepoStub) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Gasto, error) {
	if g, ok := r.gastos[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *gastoRepoStub) CreatePagoTx(_ *gorm.DB, p *model.PagoGasto) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	r.pagos = append(r.pagos, *p)
	return nil
}

func (r *gastoRepoStub) UpdateSaldoTx(_ *gorm.DB, g *model.Gasto) error {
	r.gastos[g.ID] = g
	return nil
}

func (r *gastoRepoStub) List(_ context.Context, _ dto.GastoFilter) ([]model.Gasto, int64, error) {
	var out []model.Gasto
	for _, g := range r.gastos {
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

func (r *gastoRepoStub) DB() *gorm.DB { return nil }

// ── Clientes ─────────────────────────────────────────────────────────────────

type clienteRepoStub struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newClienteRepoStub() *clienteRepoStub {
	return &clienteRepoStub{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *clienteRepoStub) Create(_ context.Context, c *model.Cliente) error {
	c.ID = uuid.New()
	r.clientes[c.ID] = c
	return nil
}

func (r *clienteRepoStub) CreateTx(_ *gorm.DB, c *model.Cliente) error {
	c.ID = uuid.New()
	r.clientes[c.ID] = c
	return nil
}

func (r *clienteRepoStub) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	if c, ok := r.clientes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *clienteRepoStub) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	if c, ok := r.clientes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *clienteRepoStub) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *clienteRepoStub) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *clienteRepoStub) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

func (r *clienteRepoStub) AjustarSaldoDeudorTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	if c, ok := r.clientes[id]; ok {
		c.SaldoDeudor = c.SaldoDeudor.Add(delta)
	}
	return nil
}

func (r *clienteRepoStub) AjustarPuntosTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if c, ok := r.clientes[id]; ok {
		c.Puntos += delta
	}
	return nil
}

func (r *clienteRepoStub) DB() *gorm.DB { return nil }

// ── Productos ────────────────────────────────────────────────────────────────

type productoRepoStub struct {
	productos   map[uuid.UUID]*model.Producto
	movimientos []model.MovimientoStock
}

func newProductoRepoStub() *productoRepoStub {
	return &productoRepoStub{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *productoRepoStub) agregar(nombre string, precio decimal.Decimal, stock int) *model.Producto {
	p := &model.Producto{
		ID:           uuid.New(),
		CodigoBarras: uuid.NewString(),
		Nombre:       nombre,
		Categoria:    "general",
		PrecioVenta:  precio,
		StockActual:  stock,
		Activo:       true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *productoRepoStub) Create(_ context.Context, p *model.Producto) error {
	p.ID = uuid.New()
	r.productos[p.ID] = p
	return nil
}

func (r *productoRepoStub) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	if p, ok := r.productos[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *productoRepoStub) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	if p, ok := r.productos[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *productoRepoStub) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *productoRepoStub) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *productoRepoStub) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *productoRepoStub) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *productoRepoStub) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *productoRepoStub) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (bool, error) {
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return false, nil
	}
	p.StockActual -= cantidad
	return true, nil
}

func (r *productoRepoStub) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	if p, ok := r.productos[id]; ok {
		p.StockActual += delta
	}
	return nil
}

func (r *productoRepoStub) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if p, ok := r.productos[id]; ok {
		p.StockActual += delta
	}
	return nil
}

func (r *productoRepoStub) RegistrarMovimientoTx(_ *gorm.DB, m *model.MovimientoStock) error {
	m.ID = uuid.New()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *productoRepoStub) ListMovimientos(_ context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *productoRepoStub) DB() *gorm.DB { return nil }

// ── Ventas ───────────────────────────────────────────────────────────────────

type ventaRepoStub struct {
	ventas     map[uuid.UUID]*model.Venta
	nextTicket int
}

func newVentaRepoStub() *ventaRepoStub {
	return &ventaRepoStub{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *ventaRepoStub) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	for i := range v.Items {
		v.Items[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *ventaRepoStub) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	if v, ok := r.ventas[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ventaRepoStub) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	if v, ok := r.ventas[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ventaRepoStub) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextTicket++
	return r.nextTicket, nil
}

func (r *ventaRepoStub) UpdatePagoTx(_ *gorm.DB, id uuid.UUID, montoPagado, saldoPendiente decimal.Decimal, estadoPago string) error {
	if v, ok := r.ventas[id]; ok {
		v.MontoPagado = montoPagado
		v.SaldoPendiente = saldoPendiente
		v.EstadoPago = estadoPago
	}
	return nil
}

func (r *ventaRepoStub) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *ventaRepoStub) DB() *gorm.DB { return nil }
