package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"carmarket/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Post("/listings/:id/comments", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.CreateComment)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 3, Status: models.ListingStatusApproved}, nil).Once()
		deps.commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(cm *models.Comment) bool {
			return cm.UserID == 7 && cm.ListingID == 1 && cm.Content == "Is it still available?"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Comment).ID = 5
		}).Return(nil).Once()
		deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "Is it still available?"}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/listings/1/comments", map[string]any{
			"content": "Is it still available?",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		deps.commentRepo.AssertExpectations(t)
	})

	t.Run("Flat route takes listing_id from the body", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Post("/comments", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.CreateComment)

		deps.listingRepo.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Listing{ID: 3, UserID: 2, Status: models.ListingStatusApproved}, nil).Once()
		deps.commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(cm *models.Comment) bool {
			return cm.ListingID == 3 && cm.UserID == 7
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Comment).ID = 6
		}).Return(nil).Once()
		deps.commentRepo.On("GetByID", mock.Anything, uint(6)).
			Return(&models.Comment{ID: 6, UserID: 7, ListingID: 3, Content: "hi"}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/comments", map[string]any{
			"listing_id": 3,
			"content":    "hi",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("Flat route without listing_id", func(t *testing.T) {
		s, _ := newTestServer()
		app := fiber.New()
		app.Post("/comments", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.CreateComment)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/comments", map[string]any{
			"content": "hi",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["errors"].(map[string]any), "listing_id")
	})

	t.Run("Invisible listing yields not found", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Post("/listings/:id/comments", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.CreateComment)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 3, Status: models.ListingStatusPending}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/listings/1/comments", map[string]any{
			"content": "hello",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Empty content", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Post("/listings/:id/comments", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.CreateComment)

		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 3, Status: models.ListingStatusApproved}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/listings/1/comments", map[string]any{
			"content": "   ",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeBody(t, resp)
		errs := body["errors"].(map[string]any)
		assert.Contains(t, errs, "content")
	})
}

func TestGetCommentsHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Get("/listings/:id/comments", s.GetComments)

	deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Listing{ID: 1, UserID: 3, Status: models.ListingStatusApproved}, nil).Once()
	deps.commentRepo.On("GetByListingID", mock.Anything, uint(1), 50, 0).
		Return([]*models.Comment{
			{ID: 1, ListingID: 1, UserID: 7, Content: "first"},
			{ID: 2, ListingID: 1, UserID: 3, Content: "second"},
		}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings/1/comments", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	comments := body["comments"].([]any)
	assert.Len(t, comments, 2)
}

func TestGetAllCommentsHandler(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Get("/comments", s.GetAllComments)

	deps.commentRepo.On("List", mock.Anything, 50, 0).
		Return([]*models.Comment{
			{ID: 2, ListingID: 3, UserID: 7, Content: "newest"},
			{ID: 1, ListingID: 1, UserID: 4, Content: "older"},
		}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/comments", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["comments"].([]any), 2)
}

func TestGetCommentHandler(t *testing.T) {
	t.Run("Visible parent listing", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Get("/comments/:id", s.GetComment)

		deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "hello"}, nil).Once()
		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 3, Status: models.ListingStatusApproved}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/comments/5", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Hidden parent listing", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Get("/comments/:id", s.GetComment)

		deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "hello"}, nil).Once()
		deps.listingRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Listing{ID: 1, UserID: 3, Status: models.ListingStatusPending}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/comments/5", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateCommentHandler(t *testing.T) {
	t.Run("Author edits own comment", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Put("/comments/:id", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.UpdateComment)

		deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "old"}, nil).Once()
		deps.commentRepo.On("Update", mock.Anything, mock.MatchedBy(func(cm *models.Comment) bool {
			return cm.Content == "new text"
		})).Return(nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/comments/5", map[string]any{
			"content": "new text",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Stranger is refused", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Put("/comments/:id", asUser(&models.User{ID: 8, Role: models.RoleUser}), s.UpdateComment)

		deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "old"}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/comments/5", map[string]any{
			"content": "new text",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteCommentHandler(t *testing.T) {
	t.Run("Admin removes any comment", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Delete("/comments/:id", asUser(&models.User{ID: 2, Role: models.RoleAdmin}), s.DeleteComment)

		deps.commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 7, ListingID: 1, Content: "spam"}, nil).Once()
		deps.commentRepo.On("Delete", mock.Anything, uint(5)).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/comments/5", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		deps.commentRepo.AssertExpectations(t)
	})

	t.Run("Unknown comment", func(t *testing.T) {
		s, deps := newTestServer()
		app := fiber.New()
		app.Delete("/comments/:id", asUser(&models.User{ID: 7, Role: models.RoleUser}), s.DeleteComment)

		deps.commentRepo.On("GetByID", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("Comment", 99)).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/comments/99", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
