package repository

import (
	"context"

	"smartpos/internal/dto"
	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GastoRepository interface {
	Create(ctx context.Context, g *model.Gasto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Gasto, error)
	// FindByIDTx locks the gasto row FOR UPDATE inside the payment transaction.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Gasto, error)
	CreatePagoTx(tx *gorm.DB, p *model.PagoGasto) error
	UpdateSaldoTx(tx *gorm.DB, g *model.Gasto) error
	List(ctx context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error)
	DB() *gorm.DB
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) DB() *gorm.DB { return r.db }

func (r *gastoRepo) Create(ctx context.Context, g *model.Gasto) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *gastoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Gasto, error) {
	var g model.Gasto
	err := r.db.WithContext(ctx).
		Preload("Pagos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gastoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Gasto, error) {
	var g model.Gasto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gastoRepo) CreatePagoTx(tx *gorm.DB, p *model.PagoGasto) error {
	return tx.Create(p).Error
}

func (r *gastoRepo) UpdateSaldoTx(tx *gorm.DB, g *model.Gasto) error {
	return tx.Model(&model.Gasto{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
		"saldo_pendiente": g.SaldoPendiente,
		"estado":          g.Estado,
	}).Error
}

func (r *gastoRepo) List(ctx context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error) {
	var gastos []model.Gasto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Gasto{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&gastos).Error
	return gastos, total, err
}
