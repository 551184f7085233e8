package repository

import (
	"context"

	"vastustructural/internal/model"

	"gorm.io/gorm"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	List(ctx context.Context, source string, page, limit int) ([]model.Lead, int64, error)
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	return GetDB(ctx, r.db).Create(lead).Error
}

func (r *leadRepository) List(ctx context.Context, source string, page, limit int) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Lead{})
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Lead{})
	if source != "" {
		fetchQuery = fetchQuery.Where("source = ?", source)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}
