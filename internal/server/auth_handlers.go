package server

import (
	"fmt"
	"strconv"
	"time"

	"carmarket/internal/models"
	"carmarket/internal/service"
	"carmarket/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Register handles POST /api/auth/register
// @Summary User registration
// @Description Register a new account and log it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string} true "Registration request"
// @Success 201 {object} object{token=string,user=models.User}
// @Failure 422 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string][]string{}
	if err := validation.ValidateName(req.Name); err != nil {
		fields["name"] = append(fields["name"], err.Error())
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fields["email"] = append(fields["email"], err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fields["password"] = append(fields["password"], err.Error())
	}
	if len(fields) > 0 {
		return models.RespondWithAppError(c, models.NewFieldValidationError(fields))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if existing != nil {
		return models.RespondWithAppError(c, models.NewFieldValidationError(map[string][]string{
			"email": {"The email has already been taken."},
		}))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		return models.RespondWithAppError(c, createErr)
	}

	// Registration doubles as the first login.
	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}
	s.setAuthCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if user == nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	// Blocked accounts fail after the password check so the response does not
	// leak whether the credentials were right.
	if user.IsBlocked {
		return models.RespondWithAppError(c,
			models.NewForbiddenError("Your account has been blocked"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}
	s.setAuthCookie(c, token)

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout
// @Summary User logout
// @Description Revoke the current token and clear the auth cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	// Logging out without a valid token is a harmless no-op; the cookie is
	// cleared either way.
	tokenString := bearerToken(c)
	if tokenString == "" {
		tokenString = c.Cookies(tokenCookie)
	}
	if tokenString != "" && s.redis != nil {
		s.blacklistToken(c, tokenString)
	}

	s.clearAuthCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// blacklistToken records the token's JTI in Redis until the token would have
// expired anyway.
func (s *Server) blacklistToken(c *fiber.Ctx, tokenString string) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return
	}

	ttl := time.Duration(s.config.JWTTTLHours) * time.Hour
	if exp, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
			ttl = remaining
		}
	}
	s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
}

// Me handles GET /api/auth/me
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} object{user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": currentUser(c)})
}

// UpdateProfile handles PATCH /api/profile
// @Summary Update own profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string} true "Profile fields"
// @Success 200 {object} object{user=models.User}
// @Failure 422 {object} models.ErrorResponse
// @Router /profile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUser(c), service.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdatePassword handles PUT /api/profile/password
// @Summary Change own password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{current_password=string,password=string} true "Password change"
// @Success 200 {object} object{message=string}
// @Failure 422 {object} models.ErrorResponse
// @Router /profile/password [put]
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		Password        string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// The middleware user may be a cache round-trip, which never carries the
	// password hash. Verify against the stored row.
	stored, err := s.userRepo.GetByEmail(c.Context(), currentUser(c).Email)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if stored == nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(req.CurrentPassword)); cmpErr != nil {
		return models.RespondWithAppError(c, models.NewFieldValidationError(map[string][]string{
			"current_password": {"The current password is incorrect."},
		}))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithAppError(c, models.NewFieldValidationError(map[string][]string{
			"password": {err.Error()},
		}))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}
	stored.Password = string(hashedPassword)
	if err := s.userRepo.Update(c.Context(), stored); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// generateToken creates a JWT token for the given user
func (s *Server) generateToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	ttl := time.Duration(s.config.JWTTTLHours) * time.Hour
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10), // Subject (user ID as string)
		"name": user.Name,                               // Display name (cached in token)
		"role": string(user.Role),                       // Role (cached in token)
		"iss":  tokenIssuer,                             // Issuer
		"aud":  tokenAudience,                           // Audience
		"exp":  now.Add(ttl).Unix(),                     // Expiration
		"iat":  now.Unix(),                              // Issued at
		"nbf":  now.Unix(),                              // Not before
		"jti":  s.generateJTI(),                         // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

func (s *Server) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(s.config.JWTTTLHours) * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production" || s.config.Env == "prod",
		Path:     "/",
	})
}

func (s *Server) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
