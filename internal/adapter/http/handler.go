package http

import (
	"strconv"

	"cv-builder/internal/apperr"
	"cv-builder/internal/auth"
	"cv-builder/internal/editor"
	"cv-builder/internal/metrics"
	"cv-builder/internal/model"
	"cv-builder/internal/render"
	"cv-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	editor    *editor.Manager
	exporter  *usecase.Exporter
	photos    *usecase.PhotoService
	assistant *usecase.Assistant
	auth      *auth.Service
	cookie    CookieConfig
	format    usecase.PageFormat
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type Deps struct {
	Editor    *editor.Manager
	Exporter  *usecase.Exporter
	Photos    *usecase.PhotoService
	Assistant *usecase.Assistant
	Auth      *auth.Service
	Cookie    CookieConfig
	// Format is used when an export request names none. Zero means A4.
	Format  usecase.PageFormat
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Cookie.Name == "" {
		d.Cookie.Name = "cv_session"
	}
	if d.Format.Name == "" {
		d.Format = usecase.A4
	}
	return &Handler{
		editor:    d.Editor,
		exporter:  d.Exporter,
		photos:    d.Photos,
		assistant: d.Assistant,
		auth:      d.Auth,
		cookie:    d.Cookie,
		format:    d.Format,
		logger:    d.Logger,
		metrics:   d.Metrics,
	}
}

// session opens the editor session of the signed-in user.
func (h *Handler) session(c *fiber.Ctx) (*editor.Session, error) {
	id := auth.IdentityFrom(c)
	if id == nil {
		return nil, auth.ErrInvalidToken
	}
	return h.editor.Open(c.UserContext(), id.UserID)
}

type cvResponse struct {
	Document *model.Resume     `json:"document"`
	Template render.TemplateID `json:"template"`
	Pending  bool              `json:"pending"`
	LastSave editor.SaveStatus `json:"lastSave"`
	Complete bool              `json:"complete"`
}

func snapshotResponse(s *editor.Session) cvResponse {
	doc := s.Snapshot()
	return cvResponse{
		Document: doc,
		Template: s.Template(),
		Pending:  s.Pending(),
		LastSave: s.LastSave(),
		Complete: doc.IsComplete(),
	}
}

func (h *Handler) Templates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"templates": render.Templates(), "default": render.Default})
}

func (h *Handler) GetCV(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(snapshotResponse(s))
}

// ReplaceCV stores the whole document. Field failures come back as 422
// but the document is kept.
func (h *Handler) ReplaceCV(c *fiber.Ctx) error {
	var doc model.Resume
	if err := c.BodyParser(&doc); err != nil {
		return apperr.InvalidInput("invalid payload")
	}
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.Replace(&doc); err != nil {
		return err
	}
	return c.JSON(snapshotResponse(s))
}

type fieldReq struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

func (h *Handler) SetField(c *fiber.Ctx) error {
	var req fieldReq
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return apperr.InvalidInput("invalid payload")
	}
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.Set(req.Path, req.Value); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) AppendEntry(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	id, err := s.Append(c.Params("list"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) RemoveEntry(c *fiber.Ctx) error {
	idx, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperr.InvalidInput("index must be a number")
	}
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.Remove(c.Params("list"), idx); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Preview renders the current document. A template query parameter also
// makes that layout the active one.
func (h *Handler) Preview(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if q := c.Query("template"); q != "" {
		id, err := render.ParseTemplateID(q)
		if err != nil {
			return err
		}
		s.SetTemplate(id)
	}
	doc, err := render.Render(s.Snapshot(), s.Template())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(doc.HTML)
}
