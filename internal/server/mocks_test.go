package server

import (
	"context"

	"carmarket/internal/config"
	"carmarket/internal/featureflags"
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockListingRepository is a mock of the ListingRepository interface
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) List(ctx context.Context, filter repository.ListingFilter, limit, offset int) ([]*models.Listing, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Listing, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) HardDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingRepository) CountByStatus(ctx context.Context) (map[models.ListingStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ListingStatus]int64), args.Error(1)
}

// MockCarModelRepository is a mock of the CarModelRepository interface
type MockCarModelRepository struct {
	mock.Mock
}

func (m *MockCarModelRepository) Create(ctx context.Context, carModel *models.CarModel) error {
	args := m.Called(ctx, carModel)
	return args.Error(0)
}

func (m *MockCarModelRepository) GetByID(ctx context.Context, id uint) (*models.CarModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CarModel), args.Error(1)
}

func (m *MockCarModelRepository) List(ctx context.Context, brandID uint) ([]models.CarModel, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CarModel), args.Error(1)
}

func (m *MockCarModelRepository) Update(ctx context.Context, carModel *models.CarModel) error {
	args := m.Called(ctx, carModel)
	return args.Error(0)
}

func (m *MockCarModelRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByListingID(ctx context.Context, listingID uint, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, listingID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) HardDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBrandRepository is a mock of the BrandRepository interface
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

func (m *MockBrandRepository) GetByID(ctx context.Context, id uint) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

func (m *MockBrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Brand), args.Error(1)
}

func (m *MockBrandRepository) Update(ctx context.Context, brand *models.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

func (m *MockBrandRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// testDeps bundles the mocks behind a fully wired Server for handler tests.
type testDeps struct {
	userRepo     *MockUserRepository
	brandRepo    *MockBrandRepository
	carModelRepo *MockCarModelRepository
	listingRepo  *MockListingRepository
	commentRepo  *MockCommentRepository
}

func newTestServer() (*Server, *testDeps) {
	deps := &testDeps{
		userRepo:     new(MockUserRepository),
		brandRepo:    new(MockBrandRepository),
		carModelRepo: new(MockCarModelRepository),
		listingRepo:  new(MockListingRepository),
		commentRepo:  new(MockCommentRepository),
	}

	s := &Server{
		config: &config.Config{
			JWTSecret:   "test-secret-key-for-handler-tests",
			JWTTTLHours: 1,
			Env:         "test",
		},
		flags:        featureflags.NewManager("ops_dashboard=on"),
		userRepo:     deps.userRepo,
		brandRepo:    deps.brandRepo,
		carModelRepo: deps.carModelRepo,
		listingRepo:  deps.listingRepo,
		commentRepo:  deps.commentRepo,
	}
	s.listingService = service.NewListingService(deps.listingRepo, deps.carModelRepo)
	s.commentService = service.NewCommentService(deps.commentRepo, deps.listingRepo)
	s.userService = service.NewUserService(deps.userRepo)
	s.catalogService = service.NewCatalogService(deps.brandRepo, deps.carModelRepo)

	return s, deps
}
