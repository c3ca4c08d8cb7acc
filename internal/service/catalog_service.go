package service

import (
	"context"
	"strings"

	"carmarket/internal/models"
	"carmarket/internal/policy"
	"carmarket/internal/repository"
)

// CatalogService manages the brand and car model reference data. Reads are
// public; writes are admin only.
type CatalogService struct {
	brandRepo    repository.BrandRepository
	carModelRepo repository.CarModelRepository
}

type BrandInput struct {
	Name        string
	Description string
}

type CarModelInput struct {
	BrandID     uint
	Name        string
	Year        int
	Description string
}

func NewCatalogService(
	brandRepo repository.BrandRepository,
	carModelRepo repository.CarModelRepository,
) *CatalogService {
	return &CatalogService{
		brandRepo:    brandRepo,
		carModelRepo: carModelRepo,
	}
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.brandRepo.List(ctx)
}

func (s *CatalogService) GetBrand(ctx context.Context, id uint) (*models.Brand, error) {
	return s.brandRepo.GetByID(ctx, id)
}

func (s *CatalogService) CreateBrand(ctx context.Context, actor *models.User, in BrandInput) (*models.Brand, error) {
	if err := policy.CanModerate(actor); err != nil {
		return nil, err
	}
	if err := validateBrandInput(in); err != nil {
		return nil, err
	}

	brand := &models.Brand{
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, actor *models.User, id uint, in BrandInput) (*models.Brand, error) {
	if err := policy.CanModerate(actor); err != nil {
		return nil, err
	}
	if err := validateBrandInput(in); err != nil {
		return nil, err
	}

	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	brand.Name = in.Name
	brand.Description = in.Description
	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *CatalogService) DeleteBrand(ctx context.Context, actor *models.User, id uint) error {
	if err := policy.CanModerate(actor); err != nil {
		return err
	}
	if _, err := s.brandRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.brandRepo.Delete(ctx, id)
}

func validateBrandInput(in BrandInput) error {
	fields := map[string][]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = append(fields["name"], "The name field is required.")
	} else if len(in.Name) > 255 {
		fields["name"] = append(fields["name"], "The name may not be greater than 255 characters.")
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

// ListCarModels returns all car models, scoped to one brand when brandID is
// non-zero.
func (s *CatalogService) ListCarModels(ctx context.Context, brandID uint) ([]models.CarModel, error) {
	if brandID != 0 {
		if _, err := s.brandRepo.GetByID(ctx, brandID); err != nil {
			return nil, err
		}
	}
	return s.carModelRepo.List(ctx, brandID)
}

func (s *CatalogService) GetCarModel(ctx context.Context, id uint) (*models.CarModel, error) {
	return s.carModelRepo.GetByID(ctx, id)
}

func (s *CatalogService) CreateCarModel(ctx context.Context, actor *models.User, in CarModelInput) (*models.CarModel, error) {
	if err := policy.CanModerate(actor); err != nil {
		return nil, err
	}
	if err := s.validateCarModelInput(ctx, in); err != nil {
		return nil, err
	}

	carModel := &models.CarModel{
		BrandID:     in.BrandID,
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}
	if err := s.carModelRepo.Create(ctx, carModel); err != nil {
		return nil, err
	}
	return s.carModelRepo.GetByID(ctx, carModel.ID)
}

func (s *CatalogService) UpdateCarModel(ctx context.Context, actor *models.User, id uint, in CarModelInput) (*models.CarModel, error) {
	if err := policy.CanModerate(actor); err != nil {
		return nil, err
	}
	if err := s.validateCarModelInput(ctx, in); err != nil {
		return nil, err
	}

	carModel, err := s.carModelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	carModel.BrandID = in.BrandID
	carModel.Name = in.Name
	carModel.Year = in.Year
	carModel.Description = in.Description
	if err := s.carModelRepo.Update(ctx, carModel); err != nil {
		return nil, err
	}
	return s.carModelRepo.GetByID(ctx, carModel.ID)
}

func (s *CatalogService) DeleteCarModel(ctx context.Context, actor *models.User, id uint) error {
	if err := policy.CanModerate(actor); err != nil {
		return err
	}
	if _, err := s.carModelRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.carModelRepo.Delete(ctx, id)
}

func (s *CatalogService) validateCarModelInput(ctx context.Context, in CarModelInput) error {
	fields := map[string][]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = append(fields["name"], "The name field is required.")
	} else if len(in.Name) > 255 {
		fields["name"] = append(fields["name"], "The name may not be greater than 255 characters.")
	}
	if in.Year != 0 && (in.Year < 1900 || in.Year > 2100) {
		fields["year"] = append(fields["year"], "The year must be between 1900 and 2100.")
	}
	if in.BrandID == 0 {
		fields["brand_id"] = append(fields["brand_id"], "The brand id field is required.")
	} else if _, err := s.brandRepo.GetByID(ctx, in.BrandID); err != nil {
		var appErr *models.AppError
		if asAppError(err, &appErr) && appErr.Code == "NOT_FOUND" {
			fields["brand_id"] = append(fields["brand_id"], "The selected brand id is invalid.")
		} else {
			return err
		}
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}
