package handlers

import (
	"errors"

	"smartcontact/internal/middleware"
	"smartcontact/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	users       *services.UserService
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *services.UserService, authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		users:       users,
		authService: authService,
		validate:    newValidator(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes on the /api/users group.
// /me is guarded by requireAuth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Post("/login", h.HandleLogin)
	router.Get("/me", requireAuth, h.HandleMe)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin verifies credentials and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("invalid login request body", zap.Error(err))
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.UserContext()
	ok, err := h.users.VerifyLogin(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("login check failed", zap.String("email", req.Email), zap.Error(err))
		return internalError(c, "Could not verify login", err)
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid email or password",
			"success": false,
		})
	}

	user, found, err := h.users.FindByEmail(ctx, req.Email)
	if err == nil && !found {
		// deleted between the two lookups
		err = errors.New("user disappeared during login")
	}
	if err != nil {
		h.logger.Error("failed to load user after login", zap.String("email", req.Email), zap.Error(err))
		return internalError(c, "Could not complete login", err)
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		return internalError(c, "Could not issue token", err)
	}

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"user_id":   user.ID,
		"user_name": user.Name,
		"success":   true,
		"token":     token,
	})
}

// HandleMe returns the user the bearer token was issued for.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
			"success": false,
		})
	}

	h.logger.Debug("fetching current user", zap.Uint("id", id), zap.String("user_name", middleware.UserName(c)))
	user, err := h.users.FetchByID(c.UserContext(), id)
	if err != nil {
		var notFound *services.UserNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": notFound.Error(),
				"success": false,
			})
		}
		h.logger.Error("failed to fetch current user", zap.Uint("id", id), zap.Error(err))
		return internalError(c, "Could not retrieve user", err)
	}
	return c.JSON(user)
}
