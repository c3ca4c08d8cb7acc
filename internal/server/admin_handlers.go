package server

import (
	"carmarket/internal/models"
	"carmarket/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard handles GET /api/admin/dashboard
// @Summary Admin dashboard counters
// @Description Per-status listing counts plus the user total
// @Tags admin
// @Produce json
// @Success 200 {object} object{listings=object,users=int}
// @Router /admin/dashboard [get]
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	counts, err := s.listingService.CountByStatus(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	userCount, err := s.userService.CountUsers(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings": fiber.Map{
			"pending":  counts[models.ListingStatusPending],
			"approved": counts[models.ListingStatusApproved],
			"rejected": counts[models.ListingStatusRejected],
			"sold":     counts[models.ListingStatusSold],
			"reserved": counts[models.ListingStatusReserved],
		},
		"users": userCount,
	})
}

// GetModerationQueue handles GET /api/admin/listings
// @Summary Moderation queue
// @Description All listings regardless of status, newest first
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{listings=[]models.Listing}
// @Router /admin/listings [get]
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)
	admin := currentUser(c)

	listings, err := s.listingRepo.List(c.Context(), repository.ListingFilter{
		RequesterID:    admin.ID,
		RequesterAdmin: true,
	}, pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"listings": listings})
}

// ApproveListing handles POST /api/admin/listings/:id/approve
// @Summary Approve a pending listing
// @Tags admin
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} object{listing=models.Listing}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/listings/{id}/approve [post]
func (s *Server) ApproveListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	listing, svcErr := s.listingService.ApproveListing(c.Context(), currentUser(c), id)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"listing": listing})
}

// RejectListing handles POST /api/admin/listings/:id/reject
// @Summary Reject a pending listing
// @Description Reject with an optional note shown to the owner
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body object{admin_comment=string} false "Rejection note"
// @Success 200 {object} object{listing=models.Listing}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/listings/{id}/reject [post]
func (s *Server) RejectListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		AdminComment *string `json:"admin_comment"`
	}
	// The body is optional; a bare reject carries no note.
	_ = c.BodyParser(&req)

	listing, svcErr := s.listingService.RejectListing(c.Context(), currentUser(c), id, req.AdminComment)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"listing": listing})
}

// AdminDeleteListing handles DELETE /api/admin/listings/:id
// @Summary Permanently delete a listing
// @Description Hard delete bypassing ownership, for moderation sweeps
// @Tags admin
// @Param id path int true "Listing ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/listings/{id} [delete]
func (s *Server) AdminDeleteListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.listingService.AdminDeleteListing(c.Context(), currentUser(c), id); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AdminDeleteComment handles DELETE /api/admin/comments/:id
// @Summary Permanently delete a comment
// @Description Hard delete bypassing ownership, for moderation sweeps
// @Tags admin
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/comments/{id} [delete]
func (s *Server) AdminDeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.AdminDeleteComment(c.Context(), currentUser(c), id); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetUsers handles GET /api/admin/users
// @Summary List accounts
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{users=[]models.User}
// @Router /admin/users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	users, err := s.userService.ListUsers(c.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}

// BlockUser handles POST /api/admin/users/:id/block
// @Summary Block an account
// @Description A blocked account cannot log in, create listings, or comment; admins cannot block themselves
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/users/{id}/block [post]
func (s *Server) BlockUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.BlockUser(c.Context(), currentUser(c), id)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"user": user})
}

// UnblockUser handles POST /api/admin/users/:id/unblock
// @Summary Unblock an account
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/unblock [post]
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.UnblockUser(c.Context(), currentUser(c), id)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Inspect feature flags
// @Description Configured flag values plus their evaluation for the calling admin
// @Tags admin
// @Produce json
// @Success 200 {object} object{flags=object,evaluated=object}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags":     s.flags.Raw(),
		"evaluated": s.flags.Snapshot(currentUser(c).ID),
	})
}
