package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"careercoach/api/internal/models"
	"careercoach/api/internal/services"
)

type ResumeHandler struct {
	resumeService services.ResumeService
	maxFileSize   int64
}

func NewResumeHandler(resumeService services.ResumeService, maxFileSize int64) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
		maxFileSize:   maxFileSize,
	}
}

func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	resume, err := h.resumeService.GetResume(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"resume": resume,
	})
}

func (h *ResumeHandler) HandleSaveResume(c *fiber.Ctx) error {
	var req models.SaveResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resume, err := h.resumeService.SaveResume(c.UserContext(), identityFrom(c), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(resume)
}

func (h *ResumeHandler) HandleImprove(c *fiber.Ctx) error {
	var req models.ImproveResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	content, err := h.resumeService.ImproveText(c.UserContext(), identityFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(models.ImproveResumeResponse{Content: content})
}

// HandleImport takes a multipart "resume" file (.pdf or .docx).
func (h *ResumeHandler) HandleImport(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Please upload a 'resume' file")
	}

	if file.Size > h.maxFileSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	resume, err := h.resumeService.ImportResume(c.UserContext(), identityFrom(c), file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resume)
}
