package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careercoach/api/internal/models"
	"careercoach/api/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) HandleSync(c *fiber.Ctx) error {
	user, err := h.userService.SyncUser(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), identityFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleOnboardingStatus(c *fiber.Ctx) error {
	status, err := h.userService.OnboardingStatus(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(status)
}
