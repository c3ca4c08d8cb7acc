package seed

import (
	"fmt"
	"log/slog"

	"carmarket/internal/models"

	"gorm.io/gorm"
)

const (
	// DemoPassword is shared by every seeded account.
	DemoPassword = "password123"
	// AdminEmail identifies the seeded admin account.
	AdminEmail = "admin@carmarket.local"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumListings int
	ShouldClean bool
	// MaxDays spreads created_at timestamps over this many past days.
	MaxDays int
	// DryRun builds entities without touching the database.
	DryRun bool
}

// statusDistribution maps a listing status to its share of seeded
// listings, in tenths.
type statusDistribution map[models.ListingStatus]int

var defaultDistribution = statusDistribution{
	models.ListingStatusApproved: 5,
	models.ListingStatusPending:  2,
	models.ListingStatusSold:     1,
	models.ListingStatusReserved: 1,
	models.ListingStatusRejected: 1,
}

// computeCounts splits total listings across statuses per the
// distribution. Rounding remainder lands on approved.
func computeCounts(total int, dist statusDistribution) map[models.ListingStatus]int {
	counts := make(map[models.ListingStatus]int, len(dist))
	assigned := 0
	for status, share := range dist {
		n := total * share / 10
		counts[status] = n
		assigned += n
	}
	counts[models.ListingStatusApproved] += total - assigned
	return counts
}

// catalog is the brand and model data seeded before any listings.
var catalog = map[string][]struct {
	Name string
	Year int
}{
	"Audi":       {{"A4", 2019}, {"A6", 2021}, {"Q5", 2020}},
	"BMW":        {{"3 Series", 2018}, {"5 Series", 2021}, {"X3", 2020}},
	"Ford":       {{"Focus", 2017}, {"Mustang", 2019}, {"Kuga", 2021}},
	"Honda":      {{"Civic", 2020}, {"CR-V", 2021}, {"Accord", 2018}},
	"Skoda":      {{"Octavia", 2020}, {"Superb", 2019}, {"Kodiaq", 2021}},
	"Toyota":     {{"Corolla", 2021}, {"Camry", 2020}, {"RAV4", 2022}},
	"Volkswagen": {{"Golf", 2019}, {"Passat", 2018}, {"Tiguan", 2021}},
}

// Seed populates the database with demo data. With opts.ShouldClean it
// first truncates all domain tables.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumListings <= 0 {
		opts.NumListings = 50
	}

	if opts.ShouldClean && !opts.DryRun {
		if err := clean(db); err != nil {
			return err
		}
	}

	f := NewFactory(db, opts)

	admin, err := f.CreateAdmin()
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	// one blocked account so moderation flows have data
	if _, err := f.CreateUser(func(u *models.User) { u.IsBlocked = true }); err != nil {
		return err
	}

	carModels := make([]*models.CarModel, 0, len(catalog)*3)
	for brandName, entries := range catalog {
		brand, err := f.CreateBrand(brandName)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			carModel, err := f.CreateCarModel(brand, entry.Name, entry.Year)
			if err != nil {
				return err
			}
			carModel.Brand = *brand
			carModels = append(carModels, carModel)
		}
	}

	counts := computeCounts(opts.NumListings, defaultDistribution)
	listings := make([]*models.Listing, 0, opts.NumListings)
	for status, n := range counts {
		for i := 0; i < n; i++ {
			owner := users[f.rng.Intn(len(users))]
			carModel := carModels[f.rng.Intn(len(carModels))]
			listing, err := f.CreateListing(owner, carModel, status)
			if err != nil {
				return err
			}
			listings = append(listings, listing)
		}
	}

	commented := 0
	for _, listing := range listings {
		if listing.Status != models.ListingStatusApproved {
			continue
		}
		for i := 0; i < f.rng.Intn(4); i++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, listing); err != nil {
				return err
			}
			commented++
		}
	}

	slog.Info("seed complete",
		"admin", admin.Email,
		"users", len(users),
		"car_models", len(carModels),
		"listings", len(listings),
		"comments", commented,
	)
	return nil
}

func clean(db *gorm.DB) error {
	// child tables first
	for _, table := range []string{"comments", "listings", "car_models", "brands", "users"} {
		if err := db.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("truncating %s: %w", table, err)
		}
	}
	return nil
}
