package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careercoach/api/internal/models"
	"careercoach/api/internal/services"
)

type InsightHandler struct {
	insightService services.InsightService
}

func NewInsightHandler(insightService services.InsightService) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
	}
}

func (h *InsightHandler) HandleGetInsights(c *fiber.Ctx) error {
	insight, err := h.insightService.GetIndustryInsights(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(insight)
}

// HandleRefreshAll is called by the scheduler. With ?due=true only records
// past their next update are refreshed, at most ?limit of them. A missing or
// non-positive limit falls back to the default batch.
func (h *InsightHandler) HandleRefreshAll(c *fiber.Ctx) error {
	var (
		resp *models.RefreshResponse
		err  error
	)
	if c.QueryBool("due") {
		limit := c.QueryInt("limit", services.DefaultDueRefreshLimit)
		if limit <= 0 {
			limit = services.DefaultDueRefreshLimit
		}
		resp, err = h.insightService.RefreshDue(c.UserContext(), limit)
	} else {
		resp, err = h.insightService.RefreshAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *InsightHandler) HandleRefreshIndustry(c *fiber.Ctx) error {
	industry := c.Params("industry")
	if industry == "" {
		return fiber.NewError(fiber.StatusBadRequest, "industry is required")
	}

	refreshed, err := h.insightService.RefreshIndustry(c.UserContext(), industry)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"industry":  industry,
		"refreshed": refreshed,
	})
}
