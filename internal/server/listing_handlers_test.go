package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"carmarket/internal/models"
	"carmarket/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// asUser installs the given account into locals, standing in for AuthRequired.
func asUser(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", user.ID)
		c.Locals("user", user)
		return c.Next()
	}
}

func TestCreateListingHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Post("/listings", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.CreateListing)

	t.Run("Success starts pending", func(t *testing.T) {
		deps.carModelRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.CarModel{ID: 1, BrandID: 1, Name: "Golf"}, nil).Once()
		deps.listingRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Listing")).Run(func(args mock.Arguments) {
			listing := args.Get(1).(*models.Listing)
			listing.ID = 10
			assert.Equal(t, uint(7), listing.UserID)
			assert.Equal(t, models.ListingStatusPending, listing.Status)
		}).Return(nil).Once()
		deps.listingRepo.On("GetByID", mock.Anything, uint(10)).
			Return(&models.Listing{ID: 10, UserID: 7, Status: models.ListingStatusPending, Title: "2019 Golf GTI"}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/listings", map[string]any{
			"car_model_id": 1,
			"title":        "2019 Golf GTI",
			"description":  "Full service history",
			"price":        21500,
			"mileage":      42000,
			"color":        "white",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		listing := body["listing"].(map[string]any)
		assert.Equal(t, "pending", listing["status"])
	})

	t.Run("Validation errors as field map", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/listings", map[string]any{
			"price": -1,
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeBody(t, resp)
		errs := body["errors"].(map[string]any)
		assert.Contains(t, errs, "title")
		assert.Contains(t, errs, "price")
	})
}

func TestGetListingHandler(t *testing.T) {
	t.Run("Guest sees approved listing", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Get("/listings/:id", s.GetListing)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusApproved}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings/1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Pending listing hidden from guests", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Get("/listings/:id", s.GetListing)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusPending}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings/1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		s, _ := newTestServer()
		app := fiber.New()
		app.Get("/listings/:id", s.GetListing)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetListingsHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Get("/listings", s.GetListings)

	deps.listingRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListingFilter) bool {
		return f.BrandID != nil && *f.BrandID == 3 &&
			f.MinPrice != nil && *f.MinPrice == 10000 &&
			f.Search == "golf" &&
			f.RequesterID == 0 && !f.RequesterAdmin
	}), 20, 0).Return([]*models.Listing{
		{ID: 1, Status: models.ListingStatusApproved, Title: "2019 Golf GTI"},
	}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/listings?brand_id=3&min_price=10000&search=golf", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	listings := body["listings"].([]any)
	assert.Len(t, listings, 1)
	deps.listingRepo.AssertExpectations(t)
}

func TestUpdateListingHandler(t *testing.T) {
	owned := func(deps *testDeps, ownerID uint, status models.ListingStatus) {
		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{
				ID: 1, UserID: ownerID, CarModelID: 1,
				Title: "2019 Golf GTI", Description: "desc", Price: 21500, Color: "white",
				Status: status,
			}, nil)
	}

	t.Run("Owner marks sold", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Put("/listings/:id", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.UpdateListing)

		owned(deps, 7, models.ListingStatusApproved)
		deps.listingRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *models.Listing) bool {
			return l.Status == models.ListingStatusSold
		})).Return(nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/listings/1", map[string]any{
			"status": "sold",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Stranger is refused", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Put("/listings/:id", asUser(&models.User{ID: 8, Role: models.RoleUser}), s.UpdateListing)

		owned(deps, 7, models.ListingStatusApproved)

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/listings/1", map[string]any{
			"price": 100,
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Pending listing cannot be marked sold", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Put("/listings/:id", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.UpdateListing)

		owned(deps, 7, models.ListingStatusPending)

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/listings/1", map[string]any{
			"status": "sold",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestDeleteListingHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Delete("/listings/:id", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.DeleteListing)

	deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusApproved}, nil).Once()
	deps.listingRepo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/listings/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	deps.listingRepo.AssertExpectations(t)
}

func TestModerationHandlers(t *testing.T) {
	admin := &models.User{ID: 2, Role: models.RoleAdmin}

	t.Run("Approve", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Patch("/listings/:id/approve", asUser(admin), s.ApproveListing)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusPending}, nil).Once()
		deps.listingRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *models.Listing) bool {
			return l.Status == models.ListingStatusApproved
		})).Return(nil).Once()
		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusApproved}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/listings/1/approve", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		listing := body["listing"].(map[string]any)
		assert.Equal(t, "approved", listing["status"])
	})

	t.Run("Reject with note", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Patch("/listings/:id/reject", asUser(admin), s.RejectListing)

		note := "VIN mismatch"
		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusPending}, nil).Once()
		deps.listingRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *models.Listing) bool {
			return l.Status == models.ListingStatusRejected &&
				l.AdminComment != nil && *l.AdminComment == note
		})).Return(nil).Once()
		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusRejected, AdminComment: &note}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/listings/1/reject", map[string]any{
			"admin_comment": note,
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Approving a non-pending listing conflicts", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Patch("/listings/:id/approve", asUser(admin), s.ApproveListing)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusSold}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/listings/1/approve", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
