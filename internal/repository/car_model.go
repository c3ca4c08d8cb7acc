package repository

import (
	"context"
	"errors"

	"carmarket/internal/models"

	"gorm.io/gorm"
)

// CarModelRepository defines persistence operations for car models.
type CarModelRepository interface {
	Create(ctx context.Context, carModel *models.CarModel) error
	GetByID(ctx context.Context, id uint) (*models.CarModel, error)
	List(ctx context.Context, brandID uint) ([]models.CarModel, error)
	Update(ctx context.Context, carModel *models.CarModel) error
	Delete(ctx context.Context, id uint) error
}

type carModelRepository struct {
	db *gorm.DB
}

// NewCarModelRepository returns a new CarModelRepository implementation.
func NewCarModelRepository(db *gorm.DB) CarModelRepository {
	return &carModelRepository{db: db}
}

func (r *carModelRepository) Create(ctx context.Context, carModel *models.CarModel) error {
	if err := r.db.WithContext(ctx).Create(carModel).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewFieldValidationError(map[string][]string{
				"brand_id": {"The selected brand id is invalid."},
			})
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *carModelRepository) GetByID(ctx context.Context, id uint) (*models.CarModel, error) {
	var carModel models.CarModel
	if err := r.db.WithContext(ctx).
		Preload("Brand").
		First(&carModel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Car model", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &carModel, nil
}

// List returns all car models, optionally scoped to one brand when brandID is non-zero.
func (r *carModelRepository) List(ctx context.Context, brandID uint) ([]models.CarModel, error) {
	var carModels []models.CarModel
	q := r.db.WithContext(ctx).Preload("Brand")
	if brandID != 0 {
		q = q.Where("brand_id = ?", brandID)
	}
	if err := q.Order("name ASC").Find(&carModels).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return carModels, nil
}

func (r *carModelRepository) Update(ctx context.Context, carModel *models.CarModel) error {
	if err := r.db.WithContext(ctx).Save(carModel).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewFieldValidationError(map[string][]string{
				"brand_id": {"The selected brand id is invalid."},
			})
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *carModelRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.CarModel{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
