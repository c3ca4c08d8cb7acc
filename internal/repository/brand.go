package repository

import (
	"context"
	"errors"

	"carmarket/internal/cache"
	"carmarket/internal/models"

	"gorm.io/gorm"
)

// BrandRepository defines persistence operations for brands.
type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id uint) (*models.Brand, error)
	List(ctx context.Context) ([]models.Brand, error)
	Update(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id uint) error
}

type brandRepository struct {
	db *gorm.DB
}

// NewBrandRepository returns a new BrandRepository implementation.
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewFieldValidationError(map[string][]string{
				"name": {"The name has already been taken."},
			})
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateBrands(ctx)
	return nil
}

func (r *brandRepository) GetByID(ctx context.Context, id uint) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).
		Preload("CarModels").
		First(&brand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Brand", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &brand, nil
}

func (r *brandRepository) List(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand

	err := cache.Aside(ctx, cache.BrandsKey, &brands, cache.BrandsTTL, func() error {
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *models.Brand) error {
	if err := r.db.WithContext(ctx).Save(brand).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewFieldValidationError(map[string][]string{
				"name": {"The name has already been taken."},
			})
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateBrands(ctx)
	return nil
}

func (r *brandRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Brand{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBrands(ctx)
	return nil
}
