package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careercoach/api/internal/models"
	"careercoach/api/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
}

func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

// HandleGenerateQuiz serves anonymous callers too; they get the default quiz.
func (h *InterviewHandler) HandleGenerateQuiz(c *fiber.Ctx) error {
	questions, err := h.interviewService.GenerateQuiz(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(models.QuizResponse{Questions: questions})
}

func (h *InterviewHandler) HandleSubmitQuiz(c *fiber.Ctx) error {
	var req models.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	assessment, err := h.interviewService.SubmitQuiz(c.UserContext(), identityFrom(c), req.Questions, req.Answers)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(assessment)
}

func (h *InterviewHandler) HandleListAssessments(c *fiber.Ctx) error {
	assessments, err := h.interviewService.ListAssessments(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"assessments": assessments,
	})
}

func (h *InterviewHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.interviewService.Stats(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
