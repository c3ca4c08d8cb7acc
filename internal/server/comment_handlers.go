package server

import (
	"carmarket/internal/models"
	"carmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/listings/:id/comments
// @Summary List comments on a listing
// @Tags comments
// @Produce json
// @Param id path int true "Listing ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{comments=[]models.Comment}
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	listingID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pagination := parsePagination(c, 50)

	comments, svcErr := s.commentService.ListComments(c.Context(), s.optionalUser(c), listingID, pagination.Limit, pagination.Offset)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/listings/:id/comments and POST /api/comments.
// On the nested route the listing comes from the path; on the flat route
// from the body's listing_id.
// @Summary Comment on a listing
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body object{content=string} true "Comment payload"
// @Success 201 {object} object{comment=models.Comment}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /listings/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		ListingID uint   `json:"listing_id"`
		Content   string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listingID := req.ListingID
	if c.Params("id") != "" {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		listingID = id
	}
	if listingID == 0 {
		return models.RespondWithAppError(c, models.NewFieldValidationError(map[string][]string{
			"listing_id": {"The listing id field is required."},
		}))
	}

	comment, svcErr := s.commentService.CreateComment(c.Context(), currentUser(c), service.CreateCommentInput{
		ListingID: listingID,
		Content:   req.Content,
	})
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// GetAllComments handles GET /api/comments
// @Summary Recent comments across all listings
// @Tags comments
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{comments=[]models.Comment}
// @Router /comments [get]
func (s *Server) GetAllComments(c *fiber.Ctx) error {
	pagination := parsePagination(c, 50)

	comments, err := s.commentService.ListAllComments(c.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// GetComment handles GET /api/comments/:id
// @Summary Fetch one comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} object{comment=models.Comment}
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, svcErr := s.commentService.GetComment(c.Context(), s.optionalUser(c), commentID)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"comment": comment})
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Description The author or an admin may edit a comment's content
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} object{comment=models.Comment}
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.UpdateComment(c.Context(), currentUser(c), service.UpdateCommentInput{
		CommentID: commentID,
		Content:   req.Content,
	})
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"comment": comment})
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Tags comments
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.DeleteComment(c.Context(), currentUser(c), commentID); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
