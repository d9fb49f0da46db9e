package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type CompanyDetailsGormRepository struct {
	db *gorm.DB
}

func NewCompanyDetailsGormRepository(db *gorm.DB) *CompanyDetailsGormRepository {
	return &CompanyDetailsGormRepository{db: db}
}

// 1レコード運用。無ければデフォルトを作る
func (r *CompanyDetailsGormRepository) Get(ctx context.Context) (model.CompanyDetails, error) {
	var d model.CompanyDetails
	err := r.db.WithContext(ctx).Order("id asc").First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d = model.CompanyDetails{Name: "My Shop"}
		if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
			return model.CompanyDetails{}, err
		}
		return d, nil
	}
	if err != nil {
		return model.CompanyDetails{}, err
	}
	return d, nil
}

func (r *CompanyDetailsGormRepository) Save(ctx context.Context, details model.CompanyDetails) (model.CompanyDetails, error) {
	if err := r.db.WithContext(ctx).Save(&details).Error; err != nil {
		return model.CompanyDetails{}, err
	}
	return details, nil
}
