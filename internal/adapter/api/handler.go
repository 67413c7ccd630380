package api

import (
	"strings"

	"adforge/internal/domain/entity"
	"adforge/internal/platform/logger"
	"adforge/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type CampaignHandler struct {
	campaigns *usecase.CampaignService
	briefs    *usecase.BriefParser
	log       *logger.Logger
}

func NewCampaignHandler(campaigns *usecase.CampaignService, briefs *usecase.BriefParser, log *logger.Logger) *CampaignHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CampaignHandler{campaigns: campaigns, briefs: briefs, log: log.With("component", "api")}
}

// fail maps err to its status; unexpected errors are logged because their
// message is not returned to the client.
func (h *CampaignHandler) fail(c *fiber.Ctx, err error) error {
	status, body := statusFor(err)
	if status == fiber.StatusInternalServerError {
		h.log.Error("request failed", "path", c.Path(), "error", err)
	} else if status >= fiber.StatusBadGateway {
		h.log.Warn("upstream failure", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(body)
}

func (h *CampaignHandler) CampaignTypes(c *fiber.Ctx) error {
	catalog := h.campaigns.Pipeline().Catalog()
	return c.JSON(fiber.Map{
		"version":           catalog.Version,
		"types":             catalog.Descriptors(),
		"conceptStrategies": catalog.Concepts.Strategies,
	})
}

func (h *CampaignHandler) PreviewPrompt(c *fiber.Ctx) error {
	var req usecase.Request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	spec, err := h.campaigns.Pipeline().Preview(req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"spec":   spec,
		"prompt": spec.Render(),
	})
}

func (h *CampaignHandler) GenerateCampaign(c *fiber.Ctx) error {
	var req usecase.Request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	out, err := h.campaigns.Generate(c.UserContext(), OwnerID(c), req, c.QueryBool("persist", true))
	if err != nil {
		return h.fail(c, err)
	}
	status := fiber.StatusOK
	if out.Record != nil {
		status = fiber.StatusCreated
		c.Location("/v1/campaigns/" + out.Record.ID)
	}
	return c.Status(status).JSON(out)
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	recs, err := h.campaigns.List(c.UserContext(), OwnerID(c), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"campaigns": recs})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	rec, err := h.campaigns.Get(c.UserContext(), OwnerID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	if err := h.campaigns.Delete(c.UserContext(), OwnerID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CampaignHandler) SimilarCampaigns(c *fiber.Ctx) error {
	hits, err := h.campaigns.Similar(c.UserContext(), OwnerID(c), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"similar": hits})
}

type parseBriefRequest struct {
	Notes string `json:"notes"`
}

func (h *CampaignHandler) ParseBrief(c *fiber.Ctx) error {
	if h.briefs == nil {
		return h.fail(c, entity.ErrFeatureDisabled)
	}
	var req parseBriefRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	uc, err := h.briefs.Parse(c.UserContext(), strings.TrimSpace(req.Notes))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"userContext": uc})
}
