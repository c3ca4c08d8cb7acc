package server

import (
	"carmarket/internal/models"
	"carmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetListings handles GET /api/listings
// @Summary Browse listings
// @Description List listings visible to the requester, newest first
// @Tags listings
// @Produce json
// @Param brand_id query int false "Filter by brand"
// @Param car_model_id query int false "Filter by car model"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param search query string false "Match against title and description"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{listings=[]models.Listing}
// @Router /listings [get]
func (s *Server) GetListings(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	listings, err := s.listingService.ListListings(c.Context(), s.optionalUser(c), service.ListListingsInput{
		BrandID:    queryUint(c, "brand_id"),
		CarModelID: queryUint(c, "car_model_id"),
		MinPrice:   queryFloat(c, "min_price"),
		MaxPrice:   queryFloat(c, "max_price"),
		Search:     c.Query("search"),
		Limit:      pagination.Limit,
		Offset:     pagination.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"listings": listings})
}

// GetCarModelListings handles GET /api/car-models/:id/listings
// @Summary Listings for one car model
// @Tags listings
// @Produce json
// @Param id path int true "Car model ID"
// @Success 200 {object} object{listings=[]models.Listing}
// @Router /car-models/{id}/listings [get]
func (s *Server) GetCarModelListings(c *fiber.Ctx) error {
	carModelID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pagination := parsePagination(c, 20)

	listings, svcErr := s.listingService.ListListings(c.Context(), s.optionalUser(c), service.ListListingsInput{
		CarModelID: &carModelID,
		Limit:      pagination.Limit,
		Offset:     pagination.Offset,
	})
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"listings": listings})
}

// GetListing handles GET /api/listings/:id
// @Summary Get one listing
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} object{listing=models.Listing}
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [get]
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	listing, svcErr := s.listingService.GetListing(c.Context(), s.optionalUser(c), id)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"listing": listing})
}

// CreateListing handles POST /api/listings
// @Summary Create a listing
// @Description Create a listing; it starts pending until an admin approves it
// @Tags listings
// @Accept json
// @Produce json
// @Param request body object{car_model_id=int,title=string,description=string,price=number,mileage=int,color=string} true "Listing payload"
// @Success 201 {object} object{listing=models.Listing}
// @Failure 422 {object} models.ErrorResponse
// @Router /listings [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	var req struct {
		CarModelID  uint    `json:"car_model_id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Mileage     int     `json:"mileage"`
		Color       string  `json:"color"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.listingService.CreateListing(c.Context(), currentUser(c), service.CreateListingInput{
		CarModelID:  req.CarModelID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Color:       req.Color,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"listing": listing})
}

// UpdateListing handles PUT /api/listings/:id
// @Summary Update a listing
// @Description Edit fields as the owner or an admin; owners may also move an approved listing to sold or reserved
// @Tags listings
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body object{car_model_id=int,title=string,description=string,price=number,mileage=int,color=string,status=string} true "Fields to change"
// @Success 200 {object} object{listing=models.Listing}
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /listings/{id} [put]
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		CarModelID  *uint    `json:"car_model_id"`
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Mileage     *int     `json:"mileage"`
		Color       *string  `json:"color"`
		Status      *string  `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateListingInput{
		CarModelID:  req.CarModelID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Color:       req.Color,
	}
	if req.Status != nil {
		status := models.ListingStatus(*req.Status)
		in.Status = &status
	}

	listing, svcErr := s.listingService.UpdateListing(c.Context(), currentUser(c), id, in)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.JSON(fiber.Map{"listing": listing})
}

// DeleteListing handles DELETE /api/listings/:id
// @Summary Delete a listing
// @Tags listings
// @Param id path int true "Listing ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [delete]
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.listingService.DeleteListing(c.Context(), currentUser(c), id); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyListings handles GET /api/users/me/listings
// @Summary Own listings
// @Description Every listing owned by the requester, including pending and rejected ones
// @Tags listings
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{listings=[]models.Listing}
// @Router /users/me/listings [get]
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	listings, err := s.listingService.GetUserListings(c.Context(), currentUser(c).ID, pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"listings": listings})
}
