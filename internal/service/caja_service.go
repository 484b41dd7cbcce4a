package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovimientoRefs carries optional back-references from a ledger entry to the
// operation that produced it.
type MovimientoRefs struct {
	VentaID *uuid.UUID
	DeudaID *uuid.UUID
	GastoID *uuid.UUID
}

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error)
	// RegistrarMovimientoTx appends an entry to the operator's open session
	// inside a caller-owned transaction. When the operator has no open
	// drawer the call is a no-op returning (nil, nil): sales and payments
	// outside a drawer shift are legitimate, this is not an error.
	RegistrarMovimientoTx(tx *gorm.DB, usuarioID uuid.UUID, tipo, metodoPago string, monto decimal.Decimal, descripcion string, refs MovimientoRefs) (*model.MovimientoCaja, error)
	// SesionAbiertaTx resolves the operator's open session inside a
	// caller-owned transaction, (nil, nil) when there is none.
	SesionAbiertaTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error)
	// EstadoActual returns (nil, nil) when the operator has no open session:
	// absence of a drawer is a valid steady state.
	EstadoActual(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, filter dto.HistorialCajaFilter) (*dto.HistorialCajaResponse, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, ErrMontoInvalido
	}

	// Guard: one open session per operator. The partial unique index on
	// (usuario_id) WHERE estado='abierta' backs this check against races.
	if existing, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID); err == nil && existing != nil {
		return nil, ErrCajaYaAbierta
	}

	sesion := &model.SesionCaja{
		UsuarioID:     usuarioID,
		MontoInicial:  req.MontoInicial,
		Estado:        "abierta",
		Observaciones: req.Observaciones,
		OpenedAt:      time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		return nil, err
	}

	return sesionToResponse(sesion, nil), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Closing freezes the four closing fields in one transaction:
//   montoEsperado = montoInicial + Σ(ingresos efectivo) − Σ(egresos efectivo)
//   desvio        = montoDeclarado − montoEsperado
// Entries with other tender methods are excluded from the expected-cash
// figure but remain in the full-balance summary. Once closed, the session is
// immutable and no further movement may reference it.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoDeclarado.IsNegative() {
		return nil, ErrMontoInvalido
	}

	var sesion *model.SesionCaja
	var movs []model.MovimientoCaja

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionAbiertaPorUsuarioTx(tx, usuarioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSinCajaAbierta
			}
			return err
		}

		// The expected-cash figure is frozen from what this transaction
		// sees: the session row is already locked, and reading the log
		// through tx keeps any concurrent insert ordered behind the close.
		movs, err = s.repo.ListMovimientosTx(tx, sesion.ID)
		if err != nil {
			return err
		}

		resumen := resumirMovimientos(sesion.MontoInicial, movs)
		esperado := resumen.SaldoEfectivo
		desvio := req.MontoDeclarado.Sub(esperado)

		now := time.Now()
		declarado := req.MontoDeclarado
		sesion.MontoEsperado = &esperado
		sesion.MontoDeclarado = &declarado
		sesion.Desvio = &desvio
		sesion.Estado = "cerrada"
		sesion.ClosedAt = &now
		sesion.Observaciones = appendObservaciones(sesion.Observaciones, req.Observaciones)

		return s.repo.UpdateSesionTx(tx, sesion)
	})
	if txErr != nil {
		return nil, txErr
	}

	resumen := resumirMovimientos(sesion.MontoInicial, movs)
	return sesionToResponse(sesion, &resumen), nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual ingreso/egreso. Movements are immutable, there is no Update or Delete.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error) {
	var mov *model.MovimientoCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.RegistrarMovimientoTx(tx, usuarioID, req.Tipo, req.MetodoPago, req.Monto, req.Descripcion, MovimientoRefs{})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	if mov == nil {
		return nil, nil
	}
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func (s *cajaService) RegistrarMovimientoTx(tx *gorm.DB, usuarioID uuid.UUID, tipo, metodoPago string, monto decimal.Decimal, descripcion string, refs MovimientoRefs) (*model.MovimientoCaja, error) {
	if monto.IsNegative() {
		return nil, ErrMontoInvalido
	}

	sesion, err := s.SesionAbiertaTx(tx, usuarioID)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		// Soft-fail: no open drawer, nothing to record.
		return nil, nil
	}

	mov := &model.MovimientoCaja{
		SesionCajaID: sesion.ID,
		UsuarioID:    usuarioID,
		Tipo:         tipo,
		MetodoPago:   metodoPago,
		Monto:        monto,
		Descripcion:  descripcion,
		VentaID:      refs.VentaID,
		DeudaID:      refs.DeudaID,
		GastoID:      refs.GastoID,
	}
	if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (s *cajaService) SesionAbiertaTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionAbiertaPorUsuarioTx(tx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sesion, nil
}

// ── EstadoActual ──────────────────────────────────────────────────────────────

func (s *cajaService) EstadoActual(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	movs, err := s.repo.ListMovimientos(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}

	resumen := resumirMovimientos(sesion.MontoInicial, movs)
	resp := sesionToResponse(sesion, &resumen)
	resp.Movimientos = make([]dto.MovimientoCajaResponse, 0, len(movs))
	for i := range movs {
		resp.Movimientos = append(resp.Movimientos, movimientoToResponse(&movs[i]))
	}
	return resp, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *cajaService) Historial(ctx context.Context, filter dto.HistorialCajaFilter) (*dto.HistorialCajaResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	sesiones, total, err := s.repo.ListSesiones(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		data = append(data, *sesionToResponse(&sesiones[i], nil))
	}
	return &dto.HistorialCajaResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// resumirMovimientos aggregates the session's entries.
// TotalIngresos / TotalEgresos sum every tender method; SaldoEfectivo counts
// efectivo only (the expected cash on hand); SaldoGeneral counts everything.
func resumirMovimientos(montoInicial decimal.Decimal, movs []model.MovimientoCaja) dto.ResumenCaja {
	ingresos := decimal.Zero
	egresos := decimal.Zero
	netoEfectivo := decimal.Zero

	for i := range movs {
		m := &movs[i]
		if m.EsIngreso() {
			ingresos = ingresos.Add(m.Monto)
			if m.MetodoPago == model.MetodoEfectivo {
				netoEfectivo = netoEfectivo.Add(m.Monto)
			}
		} else {
			egresos = egresos.Add(m.Monto)
			if m.MetodoPago == model.MetodoEfectivo {
				netoEfectivo = netoEfectivo.Sub(m.Monto)
			}
		}
	}

	return dto.ResumenCaja{
		TotalIngresos: ingresos,
		TotalEgresos:  egresos,
		SaldoEfectivo: montoInicial.Add(netoEfectivo),
		SaldoGeneral:  montoInicial.Add(ingresos).Sub(egresos),
	}
}

// appendObservaciones concatenates closing notes onto any opening notes
// instead of overwriting them.
func appendObservaciones(previas, nuevas *string) *string {
	if nuevas == nil || *nuevas == "" {
		return previas
	}
	if previas == nil || *previas == "" {
		return nuevas
	}
	joined := strings.Join([]string{*previas, *nuevas}, " | ")
	return &joined
}

func movimientoToResponse(m *model.MovimientoCaja) dto.MovimientoCajaResponse {
	return dto.MovimientoCajaResponse{
		ID:          m.ID.String(),
		Tipo:        m.Tipo,
		MetodoPago:  m.MetodoPago,
		Monto:       m.Monto,
		Descripcion: m.Descripcion,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func sesionToResponse(s *model.SesionCaja, resumen *dto.ResumenCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:             s.ID.String(),
		UsuarioID:      s.UsuarioID.String(),
		MontoInicial:   s.MontoInicial,
		MontoEsperado:  s.MontoEsperado,
		MontoDeclarado: s.MontoDeclarado,
		Desvio:         s.Desvio,
		Estado:         s.Estado,
		Observaciones:  s.Observaciones,
		Resumen:        resumen,
		OpenedAt:       s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
