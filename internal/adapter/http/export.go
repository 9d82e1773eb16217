package http

import (
	"strings"

	"cv-builder/internal/domain"
	"cv-builder/internal/render"
	"cv-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

const HeaderExportWarning = "X-Export-Warning"

// Export captures the active layout (or ?template=) and returns the PDF.
func (h *Handler) Export(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	id := s.Template()
	if q := c.Query("template"); q != "" {
		if id, err = render.ParseTemplateID(q); err != nil {
			return err
		}
	}
	format := h.format
	if q := c.Query("format"); q != "" {
		if format, err = usecase.ParsePageFormat(q); err != nil {
			return err
		}
	}

	snap := s.Snapshot()
	surface, err := render.Render(snap, id)
	if err != nil {
		return err
	}
	res, err := h.exporter.Export(c.UserContext(), usecase.ExportRequest{
		UserID:    s.UserID(),
		OwnerName: snap.PersonalInfo.Name,
		Surface:   surface,
		Format:    format,
	})
	if err != nil {
		return err
	}

	if len(res.Warnings) > 0 {
		c.Set(HeaderExportWarning, strings.Join(res.Warnings, "; "))
	}
	c.Attachment(res.FileName)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(res.PDF)
}

func (h *Handler) Exports(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	recs, err := h.exporter.History(c.UserContext(), s.UserID(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []domain.ExportRecord{}
	}
	return c.JSON(fiber.Map{"exports": recs})
}
