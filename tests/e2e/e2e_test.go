//go:build integration

package e2e

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartpos/internal/config"
	"smartpos/internal/infra"
	"smartpos/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("smartpos_test"),
		tcPostgres.WithUsername("smartpos"),
		tcPostgres.WithPassword("smartpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	_ = rdb

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("smartpos2026"), bcrypt.MinCost)
	require.NoError(t, err)
	err = db.Exec(`INSERT INTO usuarios (id, username, nombre, email, password_hash, rol, activo, created_at, updated_at)
		VALUES (gen_random_uuid(), 'admin@e2e.test', 'Admin E2E', 'admin@e2e.test', ?, 'administrador', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error
	require.NoError(t, err)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "smartpos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, engine: r}
}

func (env *testEnv) crearProducto(t *testing.T, nombre, barcode string, precio float64, stock int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"nombre":        nombre,
			"codigo_barras": barcode,
			"categoria":     "almacen",
			"precio_costo":  precio / 2,
			"precio_venta":  precio,
			"stock_actual":  stock,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (env *testEnv) abrirCaja(t *testing.T, montoInicial float64) {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": montoInicial}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full shift: open drawer, sell, record an egreso, close with a declared count
// and verify the expected/deviation arithmetic end to end.
func TestE2E_CicloCajaCompleto(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.crearProducto(t, "Gaseosa 500ml", "7890001000001", 250, 20)
	env.abrirCaja(t, 1000)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 3}},
			"metodo_pago": "efectivo",
			"estado_pago": "pagada",
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID           string `json:"id"`
		NumeroTicket int    `json:"numero_ticket"`
		Total        string `json:"total"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, 1, venta.NumeroTicket)
	assert.Equal(t, "750", venta.Total)

	// Manual egreso of 100 in cash.
	movResp := do(t, env.server, "POST", "/v1/caja/movimiento",
		jsonBody(t, map[string]any{
			"tipo":        "egreso",
			"metodo_pago": "efectivo",
			"monto":       100,
			"descripcion": "compra de hielo",
		}), env.token)
	require.Equal(t, http.StatusCreated, movResp.StatusCode)
	movResp.Body.Close()

	// Current state reflects both entries.
	estadoResp := do(t, env.server, "GET", "/v1/caja/actual", nil, env.token)
	require.Equal(t, http.StatusOK, estadoResp.StatusCode)
	var estado struct {
		Resumen struct {
			SaldoEfectivo string `json:"saldo_efectivo"`
		} `json:"resumen"`
		Movimientos []any `json:"movimientos"`
	}
	decodeJSON(t, estadoResp, &estado)
	assert.Equal(t, "1650", estado.Resumen.SaldoEfectivo)
	assert.Len(t, estado.Movimientos, 2)

	// Close declaring 1600: expected 1650, desvio -50.
	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_declarado": 1600}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		Estado         string `json:"estado"`
		MontoEsperado  string `json:"monto_esperado"`
		MontoDeclarado string `json:"monto_declarado"`
		Desvio         string `json:"desvio"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "cerrada", cierre.Estado)
	assert.Equal(t, "1650", cierre.MontoEsperado)
	assert.Equal(t, "1600", cierre.MontoDeclarado)
	assert.Equal(t, "-50", cierre.Desvio)

	// A second close has no session to act on.
	again := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_declarado": 0}), env.token)
	assert.Equal(t, http.StatusBadRequest, again.StatusCode)
	again.Body.Close()

	listResp := do(t, env.server, "GET", fmt.Sprintf("/v1/ventas?fecha=%s", time.Now().Format("2006-01-02")), nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	listResp.Body.Close()
}

// Credit sale creates a deuda; abonos settle it and cascade into the customer
// balance and the sale header.
func TestE2E_VentaCreditoYAbonos(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.crearProducto(t, "Yerba 1kg", "7890001000002", 3000, 10)
	env.abrirCaja(t, 0)

	clienteResp := do(t, env.server, "POST", "/v1/clientes",
		jsonBody(t, map[string]any{"nombre": "Ana Paredes", "limite_credito": 10000}), env.token)
	require.Equal(t, http.StatusCreated, clienteResp.StatusCode)
	var cliente struct {
		ID string `json:"id"`
	}
	decodeJSON(t, clienteResp, &cliente)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"cliente_id":  cliente.ID,
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 2}},
			"metodo_pago": "efectivo",
			"estado_pago": "credito",
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID      string  `json:"id"`
		DeudaID *string `json:"deuda_id"`
		Saldo   string  `json:"saldo_pendiente"`
	}
	decodeJSON(t, ventaResp, &venta)
	require.NotNil(t, venta.DeudaID)
	assert.Equal(t, "6000", venta.Saldo)

	// Partial payment.
	abonoResp := do(t, env.server, "POST", "/v1/deudas/"+*venta.DeudaID+"/abonos",
		jsonBody(t, map[string]any{"monto": 2500, "metodo_pago": "efectivo"}), env.token)
	require.Equal(t, http.StatusOK, abonoResp.StatusCode)
	var deuda struct {
		Saldo  string `json:"saldo_pendiente"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, abonoResp, &deuda)
	assert.Equal(t, "3500", deuda.Saldo)
	assert.Equal(t, "pendiente", deuda.Estado)

	// Overpayment is rejected.
	sobreResp := do(t, env.server, "POST", "/v1/deudas/"+*venta.DeudaID+"/abonos",
		jsonBody(t, map[string]any{"monto": 9999, "metodo_pago": "efectivo"}), env.token)
	assert.Equal(t, http.StatusBadRequest, sobreResp.StatusCode)
	sobreResp.Body.Close()

	// Final payment settles debt, customer and sale.
	finalResp := do(t, env.server, "POST", "/v1/deudas/"+*venta.DeudaID+"/abonos",
		jsonBody(t, map[string]any{"monto": 3500, "metodo_pago": "transferencia"}), env.token)
	require.Equal(t, http.StatusOK, finalResp.StatusCode)
	decodeJSON(t, finalResp, &deuda)
	assert.Equal(t, "0", deuda.Saldo)
	assert.Equal(t, "pagada", deuda.Estado)

	clienteDetalle := do(t, env.server, "GET", "/v1/clientes/"+cliente.ID, nil, env.token)
	require.Equal(t, http.StatusOK, clienteDetalle.StatusCode)
	var c struct {
		SaldoDeudor string `json:"saldo_deudor"`
	}
	decodeJSON(t, clienteDetalle, &c)
	assert.Equal(t, "0", c.SaldoDeudor)

	ventaDetalle := do(t, env.server, "GET", "/v1/ventas/"+venta.ID, nil, env.token)
	require.Equal(t, http.StatusOK, ventaDetalle.StatusCode)
	var v struct {
		EstadoPago string `json:"estado_pago"`
	}
	decodeJSON(t, ventaDetalle, &v)
	assert.Equal(t, "pagada", v.EstadoPago)
}

// Concurrent stock: the second sale of the remaining stock must fail cleanly.
func TestE2E_StockInsuficiente(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.crearProducto(t, "Jugo 1L", "7890001000003", 150, 2)
	env.abrirCaja(t, 0)

	primera := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 2}},
			"metodo_pago": "efectivo",
			"estado_pago": "pagada",
		}), env.token)
	require.Equal(t, http.StatusCreated, primera.StatusCode)
	primera.Body.Close()

	segunda := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 1}},
			"metodo_pago": "efectivo",
			"estado_pago": "pagada",
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, segunda.StatusCode)
	segunda.Body.Close()

	// Stock stays at zero, never negative.
	detalle := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, detalle.StatusCode)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, detalle, &prod)
	assert.Equal(t, 0, prod.StockActual)
}

// Gasto lifecycle: create, pay in two tranches, reject payment on settled.
func TestE2E_GastoPagos(t *testing.T) {
	env := setupTestEnv(t)
	env.abrirCaja(t, 5000)

	gastoResp := do(t, env.server, "POST", "/v1/gastos",
		jsonBody(t, map[string]any{
			"proveedor":   "Distribuidora Sur",
			"descripcion": "reposicion semanal",
			"monto_total": 4000,
		}), env.token)
	require.Equal(t, http.StatusCreated, gastoResp.StatusCode)
	var gasto struct {
		ID string `json:"id"`
	}
	decodeJSON(t, gastoResp, &gasto)

	pago1 := do(t, env.server, "POST", "/v1/gastos/"+gasto.ID+"/pagos",
		jsonBody(t, map[string]any{"monto": 1500, "metodo_pago": "efectivo"}), env.token)
	require.Equal(t, http.StatusOK, pago1.StatusCode)
	pago1.Body.Close()

	pago2 := do(t, env.server, "POST", "/v1/gastos/"+gasto.ID+"/pagos",
		jsonBody(t, map[string]any{"monto": 2500, "metodo_pago": "efectivo"}), env.token)
	require.Equal(t, http.StatusOK, pago2.StatusCode)
	var g struct {
		Estado string `json:"estado"`
		Saldo  string `json:"saldo_pendiente"`
	}
	decodeJSON(t, pago2, &g)
	assert.Equal(t, "pagada", g.Estado)
	assert.Equal(t, "0", g.Saldo)

	extra := do(t, env.server, "POST", "/v1/gastos/"+gasto.ID+"/pagos",
		jsonBody(t, map[string]any{"monto": 10, "metodo_pago": "efectivo"}), env.token)
	assert.Equal(t, http.StatusBadRequest, extra.StatusCode)
	extra.Body.Close()

	// Cash on hand dropped by both payments.
	estado := do(t, env.server, "GET", "/v1/caja/actual", nil, env.token)
	require.Equal(t, http.StatusOK, estado.StatusCode)
	var caja struct {
		Resumen struct {
			SaldoEfectivo string `json:"saldo_efectivo"`
		} `json:"resumen"`
	}
	decodeJSON(t, estado, &caja)
	assert.Equal(t, "1000", caja.Resumen.SaldoEfectivo)
}

// Public price check requires no token and caches in Redis.
func TestE2E_ConsultaPrecios(t *testing.T) {
	env := setupTestEnv(t)
	env.crearProducto(t, "Cafe Molido", "7790001234567", 5500, 8)

	resp := do(t, env.server, "GET", "/v1/precio/7790001234567", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var precio struct {
		Nombre      string `json:"nombre"`
		PrecioVenta string `json:"precio_venta"`
	}
	decodeJSON(t, resp, &precio)
	assert.Equal(t, "Cafe Molido", precio.Nombre)
	assert.Equal(t, "5500", precio.PrecioVenta)

	// Second hit is served from cache with the same payload.
	resp2 := do(t, env.server, "GET", "/v1/precio/7790001234567", nil, "")
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	decodeJSON(t, resp2, &precio)
	assert.Equal(t, "5500", precio.PrecioVenta)

	missing := do(t, env.server, "GET", "/v1/precio/0000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	missing.Body.Close()
}
