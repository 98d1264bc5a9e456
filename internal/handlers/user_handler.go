package handlers

import (
	"context"
	"errors"

	"smartcontact/internal/models"
	"smartcontact/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user records.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the user routes on router, which is expected to be
// the /api/users group.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/save_user_data", h.HandleSave)
	router.Get("/get_user_data", h.HandleFetchAll)
	router.Get("/get_user_data/:id", h.HandleFetchByID)
	router.Delete("/delete_user_data/:id", h.HandleDelete)
	router.Put("/update_user_data/:id", h.HandleUpdate)
	router.Get("/get_user_name/name/:name", h.HandleFindByName)
	router.Get("/get_user_by_email/:email", h.HandleFindByEmail)
	router.Get("/search_users/:name", h.HandleSearchByName)
	router.Get("/get_users_by_role/:role", h.HandleFindByRole)
	router.Get("/get_users_by_role/:role/status/:status", h.HandleFindByRoleAndStatus)
	router.Get("/get_users_by_city/:city", h.HandleFindByCity)
	router.Get("/get_users_by_country/:country", h.HandleFindByCountry)
	router.Get("/get_users_by_status/:status", h.HandleFindByStatus)
	router.Get("/check_email/:email", h.HandleCheckEmail)
}

// HandleSave registers a new user.
func (h *UserHandler) HandleSave(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		h.logger.Warn("invalid save request body", zap.Error(err))
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(user); err != nil {
		return validationFailed(c, err)
	}

	saved, err := h.service.Save(c.UserContext(), &user)
	if err != nil {
		if passwordRejected(err) {
			return badRequest(c, "Invalid password", err)
		}
		if errors.Is(err, services.ErrDuplicateEmail) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Email already exists",
				"success": false,
			})
		}
		h.logger.Error("failed to save user", zap.String("email", user.Email), zap.Error(err))
		return internalError(c, "Could not save user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user_id": saved.ID,
		"success": true,
	})
}

// HandleFetchAll lists every user.
func (h *UserHandler) HandleFetchAll(c *fiber.Ctx) error {
	users, err := h.service.FetchAll(c.UserContext())
	if err != nil {
		h.logger.Error("failed to fetch users", zap.Error(err))
		return internalError(c, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

// HandleFetchByID returns a single user or 404.
func (h *UserHandler) HandleFetchByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID", err)
	}

	user, err := h.service.FetchByID(c.UserContext(), id)
	if err != nil {
		var notFound *services.UserNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": notFound.Error(),
				"success": false,
			})
		}
		h.logger.Error("failed to fetch user", zap.Uint("id", id), zap.Error(err))
		return internalError(c, "Could not retrieve user", err)
	}
	return c.JSON(user)
}

// HandleDelete removes a user. Unknown IDs still report success.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID", err)
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		h.logger.Error("failed to delete user", zap.Uint("id", id), zap.Error(err))
		return internalError(c, "Could not delete user", err)
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
		"success": true,
	})
}

// HandleUpdate replaces the stored user with the request body. The password
// may be omitted to keep the current one.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID", err)
	}

	var user models.User
	if err := c.BodyParser(&user); err != nil {
		h.logger.Warn("invalid update request body", zap.Uint("id", id), zap.Error(err))
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.StructExcept(user, "Password"); err != nil {
		return validationFailed(c, err)
	}

	if _, err := h.service.Update(c.UserContext(), id, &user); err != nil {
		if passwordRejected(err) {
			return badRequest(c, "Invalid password", err)
		}
		if errors.Is(err, services.ErrDuplicateEmail) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Email already exists",
				"success": false,
			})
		}
		h.logger.Error("failed to update user", zap.Uint("id", id), zap.Error(err))
		return internalError(c, "Could not update user", err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"success": true,
	})
}

// HandleFindByName returns the user with this exact name, or null.
func (h *UserHandler) HandleFindByName(c *fiber.Ctx) error {
	return h.single(c, "name", h.service.FindByName)
}

// HandleFindByEmail returns the user with this exact email, or null.
func (h *UserHandler) HandleFindByEmail(c *fiber.Ctx) error {
	return h.single(c, "email", h.service.FindByEmail)
}

func (h *UserHandler) HandleSearchByName(c *fiber.Ctx) error {
	return h.list(c, "name", h.service.SearchByName)
}

func (h *UserHandler) HandleFindByRole(c *fiber.Ctx) error {
	return h.list(c, "role", h.service.FindByRole)
}

func (h *UserHandler) HandleFindByCity(c *fiber.Ctx) error {
	return h.list(c, "city", h.service.FindByCity)
}

func (h *UserHandler) HandleFindByCountry(c *fiber.Ctx) error {
	return h.list(c, "country", h.service.FindByCountry)
}

func (h *UserHandler) HandleFindByStatus(c *fiber.Ctx) error {
	return h.list(c, "status", h.service.FindByStatus)
}

func (h *UserHandler) HandleFindByRoleAndStatus(c *fiber.Ctx) error {
	role, status := c.Params("role"), c.Params("status")
	users, err := h.service.FindByRoleAndStatus(c.UserContext(), role, status)
	if err != nil {
		h.logger.Error("failed to list users",
			zap.String("role", role), zap.String("status", status), zap.Error(err))
		return internalError(c, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

// HandleCheckEmail reports whether the email is registered.
func (h *UserHandler) HandleCheckEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	exists, err := h.service.IsEmailExists(c.UserContext(), email)
	if err != nil {
		h.logger.Error("failed to check email", zap.String("email", email), zap.Error(err))
		return internalError(c, "Could not check email", err)
	}
	return c.JSON(fiber.Map{
		"email":  email,
		"exists": exists,
	})
}

type singleLookup func(ctx context.Context, value string) (*models.User, bool, error)

type listLookup func(ctx context.Context, value string) ([]models.User, error)

func (h *UserHandler) single(c *fiber.Ctx, param string, lookup singleLookup) error {
	value := c.Params(param)
	user, ok, err := lookup(c.UserContext(), value)
	if err != nil {
		h.logger.Error("failed to look up user", zap.String(param, value), zap.Error(err))
		return internalError(c, "Could not retrieve user", err)
	}
	if !ok {
		return c.JSON(nil)
	}
	return c.JSON(user)
}

func (h *UserHandler) list(c *fiber.Ctx, param string, lookup listLookup) error {
	value := c.Params(param)
	users, err := lookup(c.UserContext(), value)
	if err != nil {
		h.logger.Error("failed to list users", zap.String(param, value), zap.Error(err))
		return internalError(c, "Could not retrieve users", err)
	}
	return c.JSON(users)
}
