package service

import (
	"context"
	"testing"

	"smartpos/internal/dto"
	"smartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ventaFixture struct {
	svc       VentaService
	caja      CajaService
	cajaRepo  *cajaRepoStub
	ventas    *ventaRepoStub
	productos *productoRepoStub
	clientes  *clienteRepoStub
	deudas    *deudaRepoStub
}

func newVentaFixture() *ventaFixture {
	f := &ventaFixture{
		cajaRepo:  newCajaRepoStub(),
		ventas:    newVentaRepoStub(),
		productos: newProductoRepoStub(),
		clientes:  newClienteRepoStub(),
		deudas:    newDeudaRepoStub(),
	}
	f.caja = NewCajaService(f.cajaRepo)
	f.svc = NewVentaService(f.ventas, f.productos, f.clientes, f.deudas, f.caja)
	return f
}

func itemReq(p *model.Producto, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ProductoID: p.ID.String(), Cantidad: cantidad}
}

func TestRegistrarVentaPagada(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()
	usuarioID := uuid.New()

	gaseosa := f.productos.agregar("Gaseosa 2L", d("1500"), 10)
	pan := f.productos.agregar("Pan lactal", d("800"), 5)

	_, err := f.caja.Abrir(ctx, usuarioID, dto.AbrirCajaRequest{MontoInicial: d("1000")})
	require.NoError(t, err)

	resp, err := f.svc.Registrar(ctx, usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(gaseosa, 2), itemReq(pan, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.NumeroTicket)
	assert.True(t, resp.Total.Equal(d("3800")))
	assert.True(t, resp.MontoPagado.Equal(d("3800")))
	assert.True(t, resp.SaldoPendiente.IsZero())
	assert.Equal(t, model.PagoPagada, resp.EstadoPago)
	assert.Len(t, resp.Items, 2)

	// Stock decremented and audit trail written.
	assert.Equal(t, 8, f.productos.productos[gaseosa.ID].StockActual)
	assert.Equal(t, 4, f.productos.productos[pan.ID].StockActual)
	assert.Len(t, f.productos.movimientos, 2)

	// Full tendered amount reaches the drawer.
	require.Len(t, f.cajaRepo.movimientos, 1)
	mov := f.cajaRepo.movimientos[0]
	assert.Equal(t, model.MovVenta, mov.Tipo)
	assert.True(t, mov.Monto.Equal(d("3800")))
	require.NotNil(t, mov.VentaID)

	// The sale is linked to the open session.
	venta := f.ventas.ventas[uuid.MustParse(resp.ID)]
	require.NotNil(t, venta.SesionCajaID)
}

func TestRegistrarVentaSinSesionAbierta(t *testing.T) {
	f := newVentaFixture()
	p := f.productos.agregar("Cafe", d("2000"), 3)

	resp, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	require.NoError(t, err)

	// The sale succeeds without a drawer; it just stays unlinked and leaves
	// no ledger entry.
	venta := f.ventas.ventas[uuid.MustParse(resp.ID)]
	assert.Nil(t, venta.SesionCajaID)
	assert.Empty(t, f.cajaRepo.movimientos)
}

func TestRegistrarVentaStockInsuficiente(t *testing.T) {
	f := newVentaFixture()
	p := f.productos.agregar("Yerba", d("3000"), 2)

	_, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 3)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	var sinStock *StockInsuficienteError
	require.ErrorAs(t, err, &sinStock)
	assert.Equal(t, "Yerba", sinStock.Producto)
	assert.Equal(t, 2, sinStock.Disponible)
	assert.Equal(t, 3, sinStock.Solicitado)

	// Stock untouched.
	assert.Equal(t, 2, f.productos.productos[p.ID].StockActual)
}

func TestRegistrarVentaProductoInactivo(t *testing.T) {
	f := newVentaFixture()
	p := f.productos.agregar("Descontinuado", d("100"), 10)
	p.Activo = false

	_, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	var noEncontrado *ProductoNoEncontradoError
	assert.ErrorAs(t, err, &noEncontrado)
}

func TestRegistrarVentaCredito(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()
	usuarioID := uuid.New()

	p := f.productos.agregar("Harina", d("500"), 20)
	cliente := &model.Cliente{Nombre: "Bruno", LimiteCredito: d("5000"), Activo: true}
	require.NoError(t, f.clientes.Create(ctx, cliente))
	clienteID := cliente.ID.String()

	anticipo := d("300")
	resp, err := f.svc.Registrar(ctx, usuarioID, dto.RegistrarVentaRequest{
		ClienteID:   &clienteID,
		Items:       []dto.ItemVentaRequest{itemReq(p, 4)},
		MetodoPago:  model.MetodoEfectivo,
		EstadoPago:  model.PagoCredito,
		MontoPagado: &anticipo,
	})
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(d("2000")))
	assert.True(t, resp.MontoPagado.Equal(d("300")))
	assert.True(t, resp.SaldoPendiente.Equal(d("1700")))
	assert.Equal(t, model.PagoCredito, resp.EstadoPago)

	// Debt mirrors the sale balance and the customer mirror moved.
	require.Len(t, f.deudas.deudas, 1)
	for _, deuda := range f.deudas.deudas {
		assert.True(t, deuda.MontoTotal.Equal(d("1700")))
		assert.True(t, deuda.SaldoPendiente.Equal(d("1700")))
		assert.Equal(t, model.ObligacionPendiente, deuda.Estado)
	}
	assert.True(t, f.clientes.clientes[cliente.ID].SaldoDeudor.Equal(d("1700")))
}

func TestRegistrarVentaCreditoSinCliente(t *testing.T) {
	f := newVentaFixture()
	p := f.productos.agregar("Azucar", d("900"), 5)

	_, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoCredito,
	})
	assert.ErrorIs(t, err, ErrCreditoSinCliente)
}

func TestRegistrarVentaCreditoInsuficiente(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()

	p := f.productos.agregar("Aceite", d("300"), 10)
	cliente := &model.Cliente{Nombre: "Carla", LimiteCredito: d("1000"), SaldoDeudor: d("800"), Activo: true}
	require.NoError(t, f.clientes.Create(ctx, cliente))
	clienteID := cliente.ID.String()

	_, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		ClienteID:  &clienteID,
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoCredito,
	})
	var sinCredito *CreditoInsuficienteError
	require.ErrorAs(t, err, &sinCredito)
	assert.True(t, sinCredito.Disponible.Equal(d("200")))
	assert.True(t, sinCredito.Solicitado.Equal(d("300")))

	// Nothing persisted.
	assert.Empty(t, f.ventas.ventas)
	assert.Empty(t, f.deudas.deudas)
	assert.Equal(t, 10, f.productos.productos[p.ID].StockActual)
}

func TestRegistrarVentaCreditoAnticipoNoAmpliaCupo(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()

	p := f.productos.agregar("Aceite", d("300"), 10)
	cliente := &model.Cliente{Nombre: "Carla", LimiteCredito: d("1000"), SaldoDeudor: d("800"), Activo: true}
	require.NoError(t, f.clientes.Create(ctx, cliente))
	clienteID := cliente.ID.String()

	// An anticipo of 150 leaves only 150 pending, but the total of 300
	// still exceeds the 200 available and must be rejected.
	anticipo := d("150")
	_, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		ClienteID:   &clienteID,
		Items:       []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago:  model.MetodoEfectivo,
		EstadoPago:  model.PagoCredito,
		MontoPagado: &anticipo,
	})
	var sinCredito *CreditoInsuficienteError
	require.ErrorAs(t, err, &sinCredito)
	assert.True(t, sinCredito.Disponible.Equal(d("200")))
	assert.True(t, sinCredito.Solicitado.Equal(d("300")))

	assert.Empty(t, f.ventas.ventas)
	assert.Empty(t, f.deudas.deudas)
	assert.True(t, f.clientes.clientes[cliente.ID].SaldoDeudor.Equal(d("800")))
}

func TestRegistrarVentaCreditoAnticipoInvalido(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()

	p := f.productos.agregar("Arroz", d("1000"), 10)
	cliente := &model.Cliente{Nombre: "Dario", LimiteCredito: d("9999"), Activo: true}
	require.NoError(t, f.clientes.Create(ctx, cliente))
	clienteID := cliente.ID.String()

	// A credito sale whose anticipo covers the full total is not credit.
	total := d("1000")
	_, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		ClienteID:   &clienteID,
		Items:       []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago:  model.MetodoEfectivo,
		EstadoPago:  model.PagoCredito,
		MontoPagado: &total,
	})
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestRegistrarVentaClienteNuevo(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()

	p := f.productos.agregar("Fideos", d("700"), 10)

	resp, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		ClienteNuevo: &dto.ClienteNuevoRequest{Nombre: "Elsa", LimiteCredito: d("2000")},
		Items:        []dto.ItemVentaRequest{itemReq(p, 2)},
		MetodoPago:   model.MetodoEfectivo,
		EstadoPago:   model.PagoCredito,
	})
	require.NoError(t, err)

	assert.True(t, resp.SaldoPendiente.Equal(d("1400")))
	require.Len(t, f.clientes.clientes, 1)
	for _, c := range f.clientes.clientes {
		assert.Equal(t, "Elsa", c.Nombre)
		assert.True(t, c.SaldoDeudor.Equal(d("1400")))
	}
}

func TestRegistrarVentaAcumulaPuntos(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()

	p := f.productos.agregar("Vino", d("2500"), 10)
	cliente := &model.Cliente{Nombre: "Fede", Activo: true}
	require.NoError(t, f.clientes.Create(ctx, cliente))
	clienteID := cliente.ID.String()

	// 2500 -> 2 puntos (floor(total/1000)).
	_, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		ClienteID:  &clienteID,
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.clientes.clientes[cliente.ID].Puntos)
}

func TestRegistrarVentaSinPuntosAnonimaNiCredito(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()

	p := f.productos.agregar("Queso", d("4000"), 10)

	// Anonymous paid sale: no customer, no points.
	_, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	require.NoError(t, err)

	// Credit sale accrues nothing at registration time.
	cliente := &model.Cliente{Nombre: "Gina", LimiteCredito: d("9999"), Activo: true}
	require.NoError(t, f.clientes.Create(ctx, cliente))
	clienteID := cliente.ID.String()
	_, err = f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		ClienteID:  &clienteID,
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoCredito,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.clientes.clientes[cliente.ID].Puntos)
}

func TestRegistrarVentaSinItems(t *testing.T) {
	f := newVentaFixture()
	_, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		MetodoPago: model.MetodoEfectivo,
		EstadoPago: model.PagoPagada,
	})
	assert.ErrorIs(t, err, ErrVentaSinItems)
}

func TestTicketNumbersSonConsecutivos(t *testing.T) {
	f := newVentaFixture()
	ctx := context.Background()
	p := f.productos.agregar("Leche", d("1200"), 100)

	for esperado := 1; esperado <= 3; esperado++ {
		resp, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
			Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
			MetodoPago: model.MetodoEfectivo,
			EstadoPago: model.PagoPagada,
		})
		require.NoError(t, err)
		assert.Equal(t, esperado, resp.NumeroTicket)
	}
}

func TestPartirPago(t *testing.T) {
	total := d("1000")

	pagado, saldo, err := partirPago(dto.RegistrarVentaRequest{EstadoPago: model.PagoPagada}, total)
	require.NoError(t, err)
	assert.True(t, pagado.Equal(total))
	assert.True(t, saldo.IsZero())

	pagado, saldo, err = partirPago(dto.RegistrarVentaRequest{EstadoPago: model.PagoCredito}, total)
	require.NoError(t, err)
	assert.True(t, pagado.IsZero())
	assert.True(t, saldo.Equal(total))

	negativo := d("-5")
	_, _, err = partirPago(dto.RegistrarVentaRequest{EstadoPago: model.PagoCredito, MontoPagado: &negativo}, total)
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestResumirMovimientosVacio(t *testing.T) {
	resumen := resumirMovimientos(d("100"), nil)
	assert.True(t, resumen.SaldoEfectivo.Equal(d("100")))
	assert.True(t, resumen.SaldoGeneral.Equal(d("100")))
	assert.True(t, resumen.TotalIngresos.Equal(decimal.Zero))
}
