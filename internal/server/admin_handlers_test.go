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

func TestGetDashboardHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Get("/admin/dashboard", asUser(&models.User{ID: 2, Role: models.RoleAdmin}), s.GetDashboard)

	deps.listingRepo.On("CountByStatus", mock.Anything).Return(map[models.ListingStatus]int64{
		models.ListingStatusPending:  3,
		models.ListingStatusApproved: 12,
		models.ListingStatusSold:     4,
	}, nil).Once()
	deps.userRepo.On("Count", mock.Anything).Return(int64(42), nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	listings := body["listings"].(map[string]any)
	assert.Equal(t, float64(3), listings["pending"])
	assert.Equal(t, float64(12), listings["approved"])
	assert.Equal(t, float64(0), listings["rejected"])
	assert.Equal(t, float64(42), body["users"])
}

func TestGetModerationQueueHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Get("/admin/listings", asUser(&models.User{ID: 2, Role: models.RoleAdmin}), s.GetModerationQueue)

	deps.listingRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListingFilter) bool {
		return f.RequesterAdmin && f.RequesterID == 2
	}), 20, 0).Return([]*models.Listing{
		{ID: 1, Status: models.ListingStatusPending},
		{ID: 2, Status: models.ListingStatusRejected},
	}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/listings", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["listings"].([]any), 2)
}

func TestBlockUserHandler(t *testing.T) {
	admin := &models.User{ID: 2, Role: models.RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Patch("/admin/users/:id/block", asUser(admin), s.BlockUser)

		deps.userRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.User{ID: 7, Role: models.RoleUser}, nil).Once()
		deps.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == 7 && u.IsBlocked
		})).Return(nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/admin/users/7/block", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		user := body["user"].(map[string]any)
		assert.Equal(t, true, user["is_blocked"])
	})

	t.Run("Admin cannot block themselves", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Patch("/admin/users/:id/block", asUser(admin), s.BlockUser)

		deps.userRepo.On("GetByID", mock.Anything, uint(2)).
			Return(admin, nil).Maybe()

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/admin/users/2/block", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		deps.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Unknown user", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Patch("/admin/users/:id/block", asUser(admin), s.BlockUser)

		deps.userRepo.On("GetByID", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("User", 99)).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/admin/users/99/block", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminDeleteListingHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Delete("/admin/listings/:id", asUser(&models.User{ID: 2, Role: models.RoleAdmin}), s.AdminDeleteListing)

	deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusApproved}, nil).Once()
	deps.listingRepo.On("HardDelete", mock.Anything, uint(1)).Return(nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/listings/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	deps.listingRepo.AssertExpectations(t)
}

func TestAdminDeleteCommentHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Delete("/admin/comments/:id", asUser(&models.User{ID: 2, Role: models.RoleAdmin}), s.AdminDeleteComment)

	deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "spam"}, nil).Once()
	deps.commentRepo.On("HardDelete", mock.Anything, uint(5)).Return(nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/comments/5", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	deps.commentRepo.AssertExpectations(t)
}

func TestUnblockUserHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Patch("/admin/users/:id/unblock", asUser(&models.User{ID: 2, Role: models.RoleAdmin}), s.UnblockUser)

	deps.userRepo.On("GetByID", mock.Anything, uint(7)).
		Return(&models.User{ID: 7, Role: models.RoleUser, IsBlocked: true}, nil).Once()
	deps.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == 7 && !u.IsBlocked
	})).Return(nil).Once()

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/admin/users/7/unblock", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deps.userRepo.AssertExpectations(t)
}
