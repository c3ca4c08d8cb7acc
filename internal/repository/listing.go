package repository

import (
	"context"
	"errors"

	"carmarket/internal/cache"
	"carmarket/internal/models"

	"gorm.io/gorm"
)

// ListingFilter carries the optional search criteria for listing queries.
// Nil pointer fields are ignored.
type ListingFilter struct {
	BrandID    *uint
	CarModelID *uint
	MinPrice   *float64
	MaxPrice   *float64
	Search     string

	// RequesterID and RequesterAdmin scope visibility: admins see every
	// listing, authenticated users see approved listings plus their own,
	// everyone else sees approved listings only.
	RequesterID    uint
	RequesterAdmin bool
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	List(ctx context.Context, filter ListingFilter, limit, offset int) ([]*models.Listing, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.ListingStatus]int64, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewFieldValidationError(map[string][]string{
				"car_model_id": {"The selected car model id is invalid."},
			})
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("CarModel").
		Preload("CarModel.Brand").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.User").
		First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter, limit, offset int) ([]*models.Listing, error) {
	var listings []*models.Listing
	q := r.applyFilter(r.db.WithContext(ctx), filter)
	if err := q.
		Preload("User").
		Preload("CarModel").
		Preload("CarModel.Brand").
		Order("listings.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

// applyFilter composes the WHERE clauses for a listing query. Brand filtering
// goes through car_models since listings only store the model id.
func (r *listingRepository) applyFilter(db *gorm.DB, filter ListingFilter) *gorm.DB {
	q := db.Model(&models.Listing{})

	switch {
	case filter.RequesterAdmin:
		// no visibility restriction
	case filter.RequesterID != 0:
		q = q.Where("listings.status = ? OR listings.user_id = ?", models.ListingStatusApproved, filter.RequesterID)
	default:
		q = q.Where("listings.status = ?", models.ListingStatusApproved)
	}

	if filter.BrandID != nil {
		q = q.Joins("JOIN car_models ON car_models.id = listings.car_model_id").
			Where("car_models.brand_id = ?", *filter.BrandID)
	}
	if filter.CarModelID != nil {
		q = q.Where("listings.car_model_id = ?", *filter.CarModelID)
	}
	if filter.MinPrice != nil {
		q = q.Where("listings.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("listings.price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("listings.title ILIKE ? OR listings.description ILIKE ?", like, like)
	}
	return q
}

func (r *listingRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Listing, error) {
	var listings []*models.Listing
	if err := r.db.WithContext(ctx).
		Preload("CarModel").
		Preload("CarModel.Brand").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewFieldValidationError(map[string][]string{
				"car_model_id": {"The selected car model id is invalid."},
			})
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.ID)
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Listing{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, id)
	return nil
}

// HardDelete removes the row entirely, bypassing the soft-delete marker.
func (r *listingRepository) HardDelete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Unscoped().Delete(&models.Listing{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, id)
	return nil
}

// CountByStatus aggregates listing counts per moderation status for the
// admin dashboard.
func (r *listingRepository) CountByStatus(ctx context.Context) (map[models.ListingStatus]int64, error) {
	type row struct {
		Status models.ListingStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[models.ListingStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}
