package repository

import (
	"context"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeudaRepository interface {
	CreateTx(tx *gorm.DB, d *model.Deuda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deuda, error)
	// FindByIDTx locks the deuda row FOR UPDATE so concurrent abonos
	// against the same debt serialize on the saldo.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Deuda, error)
	CreateAbonoTx(tx *gorm.DB, a *model.Abono) error
	UpdateSaldoTx(tx *gorm.DB, d *model.Deuda) error
	List(ctx context.Context, filter dto.DeudaFilter) ([]model.Deuda, int64, error)
	// MarcarVencidasTx flips pendiente → vencida for every deuda past its due
	// date and returns the affected rows. Idempotent.
	MarcarVencidasTx(tx *gorm.DB, now time.Time) ([]model.Deuda, error)
	ExisteDeudaActiva(ctx context.Context, clienteID uuid.UUID) (bool, error)
	DB() *gorm.DB
}

type deudaRepo struct{ db *gorm.DB }

func NewDeudaRepository(db *gorm.DB) DeudaRepository { return &deudaRepo{db: db} }

func (r *deudaRepo) DB() *gorm.DB { return r.db }

func (r *deudaRepo) CreateTx(tx *gorm.DB, d *model.Deuda) error {
	return tx.Create(d).Error
}

func (r *deudaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Deuda, error) {
	var d model.Deuda
	err := r.db.WithContext(ctx).
		Preload("Abonos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Cliente").
		First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deudaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Deuda, error) {
	var d model.Deuda
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deudaRepo) CreateAbonoTx(tx *gorm.DB, a *model.Abono) error {
	return tx.Create(a).Error
}

func (r *deudaRepo) UpdateSaldoTx(tx *gorm.DB, d *model.Deuda) error {
	return tx.Model(&model.Deuda{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"saldo_pendiente": d.SaldoPendiente,
		"estado":          d.Estado,
	}).Error
}

func (r *deudaRepo) List(ctx context.Context, filter dto.DeudaFilter) ([]model.Deuda, int64, error) {
	var deudas []model.Deuda
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Deuda{})
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Cliente").Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&deudas).Error
	return deudas, total, err
}

func (r *deudaRepo) MarcarVencidasTx(tx *gorm.DB, now time.Time) ([]model.Deuda, error) {
	var afectadas []model.Deuda
	err := tx.Model(&afectadas).
		Clauses(clause.Returning{}).
		Where("estado = ? AND fecha_vencimiento IS NOT NULL AND fecha_vencimiento < ?", model.ObligacionPendiente, now).
		Update("estado", model.ObligacionVencida).Error
	return afectadas, err
}

func (r *deudaRepo) ExisteDeudaActiva(ctx context.Context, clienteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Deuda{}).
		Where("cliente_id = ? AND estado <> ?", clienteID, model.ObligacionPagada).
		Count(&count).Error
	return count > 0, err
}
