package repository

import (
	"context"
	"time"

	"vastustructural/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContractorFilter narrows a contractor listing.
type ContractorFilter struct {
	Status string
	Search string // name, company, phone, district
	Page   int
	Limit  int
}

type ContractorRepository interface {
	Create(ctx context.Context, contractor *model.Contractor) error
	List(ctx context.Context, filter ContractorFilter) ([]model.Contractor, int64, error)
	GetByID(ctx context.Context, id string) (*model.Contractor, error)
	GetByReferralCode(ctx context.Context, code string) (*model.Contractor, error)
	Update(ctx context.Context, id string, patch model.ContractorPatch) (*model.Contractor, error)
}

type contractorRepository struct {
	db *gorm.DB
}

func NewContractorRepository(db *gorm.DB) ContractorRepository {
	return &contractorRepository{db: db}
}

func (r *contractorRepository) Create(ctx context.Context, contractor *model.Contractor) error {
	return translate(GetDB(ctx, r.db).Create(contractor).Error, "contractor", contractor.ReferralCode)
}

func applyContractorFilter(query *gorm.DB, filter ContractorFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR company ILIKE ? OR phone ILIKE ? OR district ILIKE ?",
			like, like, like, like)
	}
	return query
}

func (r *contractorRepository) List(ctx context.Context, filter ContractorFilter) ([]model.Contractor, int64, error) {
	var contractors []model.Contractor
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyContractorFilter(db.Model(&model.Contractor{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := applyContractorFilter(db.Model(&model.Contractor{}), filter).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&contractors).Error; err != nil {
		return nil, 0, err
	}

	return contractors, total, nil
}

func (r *contractorRepository) GetByID(ctx context.Context, id string) (*model.Contractor, error) {
	var contractor model.Contractor
	if err := GetDB(ctx, r.db).First(&contractor, "id = ?", id).Error; err != nil {
		return nil, translate(err, "contractor", id)
	}
	return &contractor, nil
}

func (r *contractorRepository) GetByReferralCode(ctx context.Context, code string) (*model.Contractor, error) {
	var contractor model.Contractor
	if err := GetDB(ctx, r.db).First(&contractor, "referral_code = ?", code).Error; err != nil {
		return nil, translate(err, "contractor", code)
	}
	return &contractor, nil
}

func (r *contractorRepository) Update(ctx context.Context, id string, patch model.ContractorPatch) (*model.Contractor, error) {
	var contractor model.Contractor
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&contractor, "id = ?", id).Error; err != nil {
			return translate(err, "contractor", id)
		}
		patch.Apply(&contractor)
		contractor.UpdatedAt = time.Now()
		return translate(tx.Save(&contractor).Error, "contractor", id)
	})
	if err != nil {
		return nil, err
	}
	return &contractor, nil
}
