package http

import (
	"strconv"
	"time"

	"cv-builder/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type AppConfig struct {
	AllowOrigins string
	// MediaDir is served at /media when photos are stored locally.
	MediaDir string
	// BodyLimit must leave room for a 2 MiB photo plus multipart framing.
	BodyLimit int
}

// NewApp builds the fiber app with middleware and every route.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 4 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:               "cv-builder",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(h.logger),
	})

	app.Use(recover.New())
	app.Use(h.accessLog)
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins, AllowCredentials: true}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(h.metrics.Handler()))
	if cfg.MediaDir != "" {
		// Capture loads photos cross-origin from a file:// page.
		app.Use("/media", cors.New(cors.Config{AllowOrigins: "*"}))
		app.Static("/media", cfg.MediaDir, fiber.Static{MaxAge: 3600})
	}

	app.Use(auth.Guard(h.auth, h.cookie.Name, h.logger))

	app.Get("/", h.Home)
	app.Get("/login", h.LoginPage)
	app.Get("/signup", h.LoginPage)
	app.Get("/editor", h.Preview)

	a := app.Group("/auth")
	a.Post("/session", h.SignIn)
	a.Post("/logout", h.SignOut)
	a.Get("/me", h.Me)

	api := app.Group("/api")
	api.Get("/templates", h.Templates)

	cv := api.Group("/cv")
	cv.Get("/", h.GetCV)
	cv.Put("/", h.ReplaceCV)
	cv.Patch("/fields", h.SetField)
	cv.Get("/preview", h.Preview)
	cv.Post("/export", h.Export)
	cv.Get("/exports", h.Exports)
	cv.Post("/photo", h.UploadPhoto)
	cv.Delete("/photo", h.RemovePhoto)
	cv.Post("/:list", h.AppendEntry)
	cv.Delete("/:list/:index", h.RemoveEntry)

	ai := api.Group("/ai")
	ai.Post("/draft", h.Draft)
	ai.Post("/ats", h.OptimizeATS)

	return app
}

// accessLog records every request in the log and the request metrics.
func (h *Handler) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	d := time.Since(start)
	route := c.Route().Path
	h.metrics.Request(c.Method(), route, strconv.Itoa(status), d)
	h.logger.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("duration", d))
	return nil
}
