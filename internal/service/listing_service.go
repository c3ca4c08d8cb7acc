// Package service implements the business rules sitting between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"strings"

	"carmarket/internal/cache"
	"carmarket/internal/middleware"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/policy"
	"carmarket/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type ListingService struct {
	listingRepo  repository.ListingRepository
	carModelRepo repository.CarModelRepository
}

type CreateListingInput struct {
	CarModelID  uint
	Title       string
	Description string
	Price       float64
	Mileage     int
	Color       string
}

// UpdateListingInput carries the mutable listing fields. Nil pointers mean
// "leave unchanged".
type UpdateListingInput struct {
	CarModelID  *uint
	Title       *string
	Description *string
	Price       *float64
	Mileage     *int
	Color       *string
	Status      *models.ListingStatus
}

// ListListingsInput mirrors the public catalog query parameters.
type ListListingsInput struct {
	BrandID    *uint
	CarModelID *uint
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Limit      int
	Offset     int
}

func NewListingService(
	listingRepo repository.ListingRepository,
	carModelRepo repository.CarModelRepository,
) *ListingService {
	return &ListingService{
		listingRepo:  listingRepo,
		carModelRepo: carModelRepo,
	}
}

const (
	maxTitleLen       = 255
	maxDescriptionLen = 10000
	maxColorLen       = 50
)

func validateListingFields(fields map[string][]string, title, description, color string, price float64, mileage int) {
	if strings.TrimSpace(title) == "" {
		fields["title"] = append(fields["title"], "The title field is required.")
	} else if len(title) > maxTitleLen {
		fields["title"] = append(fields["title"], "The title may not be greater than 255 characters.")
	}
	if strings.TrimSpace(description) == "" {
		fields["description"] = append(fields["description"], "The description field is required.")
	} else if len(description) > maxDescriptionLen {
		fields["description"] = append(fields["description"], "The description may not be greater than 10000 characters.")
	}
	if price <= 0 {
		fields["price"] = append(fields["price"], "The price must be greater than 0.")
	}
	if mileage < 0 {
		fields["mileage"] = append(fields["mileage"], "The mileage must be at least 0.")
	}
	if strings.TrimSpace(color) == "" {
		fields["color"] = append(fields["color"], "The color field is required.")
	} else if len(color) > maxColorLen {
		fields["color"] = append(fields["color"], "The color may not be greater than 50 characters.")
	}
}

// CreateListing stores a new listing owned by actor. The status always starts
// at pending regardless of what the client sent; moderation is the only way
// out of it.
func (s *ListingService) CreateListing(ctx context.Context, actor *models.User, in CreateListingInput) (*models.Listing, error) {
	if err := policy.CanCreateListing(actor); err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	validateListingFields(fields, in.Title, in.Description, in.Color, in.Price, in.Mileage)
	if in.CarModelID == 0 {
		fields["car_model_id"] = append(fields["car_model_id"], "The car model id field is required.")
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if _, err := s.carModelRepo.GetByID(ctx, in.CarModelID); err != nil {
		var appErr *models.AppError
		if asAppError(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return nil, models.NewFieldValidationError(map[string][]string{
				"car_model_id": {"The selected car model id is invalid."},
			})
		}
		return nil, err
	}

	listing := &models.Listing{
		UserID:      actor.ID,
		CarModelID:  in.CarModelID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Mileage:     in.Mileage,
		Color:       in.Color,
		Status:      models.ListingStatusPending,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return s.listingRepo.GetByID(ctx, listing.ID)
}

// GetListing fetches one listing, enforcing visibility. Hidden listings look
// exactly like missing ones to unauthorized viewers. Guest reads are served
// cache-aside; every listing write drops the entry.
func (s *ListingService) GetListing(ctx context.Context, viewer *models.User, id uint) (*models.Listing, error) {
	if viewer == nil {
		var listing models.Listing
		err := cache.Aside(ctx, cache.ListingKey(id), &listing, cache.ListingTTL, func() error {
			fresh, err := s.listingRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			// Only publicly visible listings may enter the cache.
			if !policy.CanViewListing(nil, fresh) {
				return models.NewNotFoundError("Listing", id)
			}
			listing = *fresh
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &listing, nil
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewListing(viewer, listing) {
		return nil, models.NewNotFoundError("Listing", id)
	}
	return listing, nil
}

// ListListings returns the catalog page visible to viewer.
func (s *ListingService) ListListings(ctx context.Context, viewer *models.User, in ListListingsInput) ([]*models.Listing, error) {
	span, ctx := observability.NewSpan(ctx, "listings.browse")
	defer span.End()

	filter := repository.ListingFilter{
		BrandID:    in.BrandID,
		CarModelID: in.CarModelID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Search:     in.Search,
	}
	if viewer != nil {
		filter.RequesterID = viewer.ID
		filter.RequesterAdmin = viewer.IsAdmin()
	}

	listings, err := s.listingRepo.List(ctx, filter, in.Limit, in.Offset)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("listings.count", len(listings)))
	return listings, nil
}

// GetUserListings returns every listing owned by userID, any status.
func (s *ListingService) GetUserListings(ctx context.Context, userID uint, limit, offset int) ([]*models.Listing, error) {
	return s.listingRepo.GetByUserID(ctx, userID, limit, offset)
}

// UpdateListing edits listing fields for the owner or an admin. A status
// change rides the owner transition rules: only the owner, only out of
// approved, only into sold or reserved.
func (s *ListingService) UpdateListing(ctx context.Context, actor *models.User, id uint, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModifyListing(actor, listing); err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != listing.Status {
		if err := policy.OwnerTransition(actor, listing, *in.Status); err != nil {
			return nil, err
		}
		listing.Status = *in.Status
	}

	if in.Title != nil {
		listing.Title = *in.Title
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Price != nil {
		listing.Price = *in.Price
	}
	if in.Mileage != nil {
		listing.Mileage = *in.Mileage
	}
	if in.Color != nil {
		listing.Color = *in.Color
	}
	if in.CarModelID != nil {
		if _, err := s.carModelRepo.GetByID(ctx, *in.CarModelID); err != nil {
			var appErr *models.AppError
			if asAppError(err, &appErr) && appErr.Code == "NOT_FOUND" {
				return nil, models.NewFieldValidationError(map[string][]string{
					"car_model_id": {"The selected car model id is invalid."},
				})
			}
			return nil, err
		}
		listing.CarModelID = *in.CarModelID
	}

	fields := map[string][]string{}
	validateListingFields(fields, listing.Title, listing.Description, listing.Color, listing.Price, listing.Mileage)
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return s.listingRepo.GetByID(ctx, listing.ID)
}

// DeleteListing removes a listing for the owner or an admin.
func (s *ListingService) DeleteListing(ctx context.Context, actor *models.User, id uint) error {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanModifyListing(actor, listing); err != nil {
		return err
	}
	return s.listingRepo.Delete(ctx, id)
}

// AdminDeleteListing permanently removes a listing, bypassing ownership.
// Used for moderation sweeps.
func (s *ListingService) AdminDeleteListing(ctx context.Context, actor *models.User, id uint) error {
	if err := policy.CanModerate(actor); err != nil {
		return err
	}
	if _, err := s.listingRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.listingRepo.HardDelete(ctx, id)
}

// ApproveListing moves a pending listing to approved and clears any previous
// rejection note.
func (s *ListingService) ApproveListing(ctx context.Context, actor *models.User, id uint) (*models.Listing, error) {
	return s.moderate(ctx, actor, id, models.ListingStatusApproved, nil)
}

// RejectListing moves a pending listing to rejected, optionally attaching the
// admin's reasoning for the owner to read.
func (s *ListingService) RejectListing(ctx context.Context, actor *models.User, id uint, adminComment *string) (*models.Listing, error) {
	return s.moderate(ctx, actor, id, models.ListingStatusRejected, adminComment)
}

func (s *ListingService) moderate(ctx context.Context, actor *models.User, id uint, target models.ListingStatus, adminComment *string) (*models.Listing, error) {
	span, ctx := observability.NewSpan(ctx, "listings.moderate")
	defer span.End()
	span.AddAttributes(
		attribute.Int("listing.id", int(id)),
		attribute.String("listing.decision", string(target)),
	)

	if err := policy.CanModerate(actor); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingStatusPending {
		return nil, models.NewConflictError("Only pending listings can be moderated")
	}

	listing.Status = target
	listing.AdminComment = adminComment
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		span.SetError(err)
		return nil, err
	}

	middleware.ModerationDecisions.WithLabelValues(string(target)).Inc()
	return s.listingRepo.GetByID(ctx, listing.ID)
}

// CountByStatus exposes the per-status listing totals for the admin dashboard.
func (s *ListingService) CountByStatus(ctx context.Context) (map[models.ListingStatus]int64, error) {
	return s.listingRepo.CountByStatus(ctx)
}
