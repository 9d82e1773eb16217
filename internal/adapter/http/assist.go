package http

import (
	"cv-builder/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type draftReq struct {
	Prompt string `json:"prompt"`
}

// Draft returns a model-written summary. With ?apply=summary the draft is
// also written into the document.
func (h *Handler) Draft(c *fiber.Ctx) error {
	var req draftReq
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid payload")
	}
	draft, err := h.assistant.GenerateDraft(c.UserContext(), req.Prompt)
	if err != nil {
		return err
	}
	if c.Query("apply") == "summary" {
		s, err := h.session(c)
		if err != nil {
			return err
		}
		if err := s.Set("summary", draft); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"cvDraft": draft})
}

type atsReq struct {
	CVContent      string `json:"cvContent"`
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) OptimizeATS(c *fiber.Ctx) error {
	var req atsReq
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid payload")
	}
	out, err := h.assistant.OptimizeForApplicantTracking(c.UserContext(), req.CVContent, req.JobDescription)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"optimizedCvContent": out})
}
