package server

import (
	"carmarket/internal/models"
	"carmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBrands handles GET /api/brands
// @Summary List brands
// @Tags catalog
// @Produce json
// @Success 200 {object} object{brands=[]models.Brand}
// @Router /brands [get]
func (s *Server) GetBrands(c *fiber.Ctx) error {
	brands, err := s.catalogService.ListBrands(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"brands": brands})
}

// GetBrand handles GET /api/brands/:id
// @Summary Get a brand with its car models
// @Tags catalog
// @Produce json
// @Param id path int true "Brand ID"
// @Success 200 {object} object{brand=models.Brand}
// @Failure 404 {object} models.ErrorResponse
// @Router /brands/{id} [get]
func (s *Server) GetBrand(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	brand, svcErr := s.catalogService.GetBrand(c.Context(), id)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(fiber.Map{"brand": brand})
}

// CreateBrand handles POST /api/brands (admin)
// @Summary Create a brand
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string} true "Brand payload"
// @Success 201 {object} object{brand=models.Brand}
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /brands [post]
func (s *Server) CreateBrand(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	brand, err := s.catalogService.CreateBrand(c.Context(), currentUser(c), service.BrandInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"brand": brand})
}

// UpdateBrand handles PUT /api/brands/:id (admin)
// @Summary Update a brand
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Brand ID"
// @Param request body object{name=string,description=string} true "Brand payload"
// @Success 200 {object} object{brand=models.Brand}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /brands/{id} [put]
func (s *Server) UpdateBrand(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	brand, svcErr := s.catalogService.UpdateBrand(c.Context(), currentUser(c), id, service.BrandInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(fiber.Map{"brand": brand})
}

// DeleteBrand handles DELETE /api/brands/:id (admin)
// @Summary Delete a brand and its car models
// @Tags catalog
// @Param id path int true "Brand ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /brands/{id} [delete]
func (s *Server) DeleteBrand(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.catalogService.DeleteBrand(c.Context(), currentUser(c), id); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCarModels handles GET /api/car-models
// @Summary List car models
// @Tags catalog
// @Produce json
// @Param brand_id query int false "Scope to one brand"
// @Success 200 {object} object{car_models=[]models.CarModel}
// @Router /car-models [get]
func (s *Server) GetCarModels(c *fiber.Ctx) error {
	var brandID uint
	if v := queryUint(c, "brand_id"); v != nil {
		brandID = *v
	}

	carModels, err := s.catalogService.ListCarModels(c.Context(), brandID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"car_models": carModels})
}

// GetBrandCarModels handles GET /api/brands/:id/car-models
// @Summary List a brand's car models
// @Tags catalog
// @Produce json
// @Param id path int true "Brand ID"
// @Success 200 {object} object{car_models=[]models.CarModel}
// @Failure 404 {object} models.ErrorResponse
// @Router /brands/{id}/car-models [get]
func (s *Server) GetBrandCarModels(c *fiber.Ctx) error {
	brandID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, svcErr := s.catalogService.GetBrand(c.Context(), brandID); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	carModels, svcErr := s.catalogService.ListCarModels(c.Context(), brandID)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(fiber.Map{"car_models": carModels})
}

// GetCarModel handles GET /api/car-models/:id
// @Summary Get a car model
// @Tags catalog
// @Produce json
// @Param id path int true "Car model ID"
// @Success 200 {object} object{car_model=models.CarModel}
// @Failure 404 {object} models.ErrorResponse
// @Router /car-models/{id} [get]
func (s *Server) GetCarModel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	carModel, svcErr := s.catalogService.GetCarModel(c.Context(), id)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(fiber.Map{"car_model": carModel})
}

// CreateCarModel handles POST /api/car-models (admin)
// @Summary Create a car model
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body object{brand_id=int,name=string,year=int,description=string} true "Car model payload"
// @Success 201 {object} object{car_model=models.CarModel}
// @Failure 422 {object} models.ErrorResponse
// @Router /car-models [post]
func (s *Server) CreateCarModel(c *fiber.Ctx) error {
	var req struct {
		BrandID     uint   `json:"brand_id"`
		Name        string `json:"name"`
		Year        int    `json:"year"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	carModel, err := s.catalogService.CreateCarModel(c.Context(), currentUser(c), service.CarModelInput{
		BrandID:     req.BrandID,
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"car_model": carModel})
}

// UpdateCarModel handles PUT /api/car-models/:id (admin)
// @Summary Update a car model
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Car model ID"
// @Param request body object{brand_id=int,name=string,year=int,description=string} true "Car model payload"
// @Success 200 {object} object{car_model=models.CarModel}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /car-models/{id} [put]
func (s *Server) UpdateCarModel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		BrandID     uint   `json:"brand_id"`
		Name        string `json:"name"`
		Year        int    `json:"year"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	carModel, svcErr := s.catalogService.UpdateCarModel(c.Context(), currentUser(c), id, service.CarModelInput{
		BrandID:     req.BrandID,
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	})
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(fiber.Map{"car_model": carModel})
}

// DeleteCarModel handles DELETE /api/car-models/:id (admin)
// @Summary Delete a car model
// @Tags catalog
// @Param id path int true "Car model ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /car-models/{id} [delete]
func (s *Server) DeleteCarModel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.catalogService.DeleteCarModel(c.Context(), currentUser(c), id); svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
