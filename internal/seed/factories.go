// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"carmarket/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// With DryRun set it only constructs structs and assigns synthetic IDs,
// which lets tests exercise the generators without a database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

// pastTime returns a timestamp spread over the last opts.MaxDays days so the
// seeded data does not all share one creation instant.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

// CreateUser persists a regular account with the shared demo password.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing demo password: %w", err)
	}

	name := gofakeit.Name()
	user := &models.User{
		Name:      name,
		Email:     gofakeit.Username() + fmt.Sprintf("%d", f.rng.Intn(10000)) + "@example.com",
		Password:  string(hash),
		Role:      models.RoleUser,
		CreatedAt: f.pastTime(),
	}
	for _, o := range overrides {
		o(user)
	}

	if f.opts.DryRun {
		user.ID = f.assignID()
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("creating user %s: %w", user.Email, err)
	}
	return user, nil
}

// CreateAdmin persists the well-known admin account.
func (f *Factory) CreateAdmin() (*models.User, error) {
	return f.CreateUser(func(u *models.User) {
		u.Name = "Admin"
		u.Email = AdminEmail
		u.Role = models.RoleAdmin
	})
}

// CreateBrand persists one brand.
func (f *Factory) CreateBrand(name string) (*models.Brand, error) {
	brand := &models.Brand{
		Name:        name,
		Description: gofakeit.Sentence(10),
	}
	if f.opts.DryRun {
		brand.ID = f.assignID()
		return brand, nil
	}
	if err := f.db.Create(brand).Error; err != nil {
		return nil, fmt.Errorf("creating brand %s: %w", name, err)
	}
	return brand, nil
}

// CreateCarModel persists one model under the given brand.
func (f *Factory) CreateCarModel(brand *models.Brand, name string, year int) (*models.CarModel, error) {
	carModel := &models.CarModel{
		BrandID:     brand.ID,
		Name:        name,
		Year:        year,
		Description: gofakeit.Sentence(8),
	}
	if f.opts.DryRun {
		carModel.ID = f.assignID()
		return carModel, nil
	}
	if err := f.db.Create(carModel).Error; err != nil {
		return nil, fmt.Errorf("creating car model %s %s: %w", brand.Name, name, err)
	}
	return carModel, nil
}

// CreateListing persists a listing owned by user for the given car model.
func (f *Factory) CreateListing(user *models.User, carModel *models.CarModel, status models.ListingStatus) (*models.Listing, error) {
	listing := &models.Listing{
		UserID:      user.ID,
		CarModelID:  carModel.ID,
		Title:       fmt.Sprintf("%d %s %s", carModel.Year, carModel.Brand.Name, carModel.Name),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Price:       float64(5000 + f.rng.Intn(60000)),
		Mileage:     f.rng.Intn(250000),
		Color:       gofakeit.Color(),
		Status:      status,
		CreatedAt:   f.pastTime(),
	}
	if status == models.ListingStatusRejected {
		note := "Listing does not meet marketplace guidelines."
		listing.AdminComment = &note
	}

	if f.opts.DryRun {
		listing.ID = f.assignID()
		return listing, nil
	}
	if err := f.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("creating listing %q: %w", listing.Title, err)
	}
	return listing, nil
}

// CreateComment persists a comment by user on the given listing.
func (f *Factory) CreateComment(user *models.User, listing *models.Listing) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:    user.ID,
		ListingID: listing.ID,
		Content:   f.commentContent(),
		CreatedAt: f.pastTime(),
	}
	if f.opts.DryRun {
		comment.ID = f.assignID()
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("creating comment on listing %d: %w", listing.ID, err)
	}
	return comment, nil
}

var commentTemplates = []string{
	"Is this still available?",
	"How many previous owners?",
	"Any accidents or bodywork?",
	"Is the service history complete?",
	"Can I come see it this weekend?",
	"Does the price include a fresh inspection?",
	"What is the reason for selling?",
}

func (f *Factory) commentContent() string {
	if f.rng.Intn(4) == 0 {
		return fmt.Sprintf("Would you consider %.0f?", gofakeit.Price(3000, 40000))
	}
	return commentTemplates[f.rng.Intn(len(commentTemplates))]
}
