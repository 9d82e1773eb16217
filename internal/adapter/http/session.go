package http

import (
	"time"

	"cv-builder/internal/apperr"
	"cv-builder/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type sessionReq struct {
	Token string `json:"token"`
}

// SignIn exchanges a provider token for the session cookie.
func (h *Handler) SignIn(c *fiber.Ctx) error {
	var req sessionReq
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return apperr.InvalidInput("token is required")
	}
	id, exp, err := h.auth.SignIn(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    req.Token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"user": id})
}

func (h *Handler) SignOut(c *fiber.Ctx) error {
	if token := auth.TokenFrom(c, h.cookie.Name); token != "" {
		if err := h.auth.SignOut(c.UserContext(), token); err != nil {
			return err
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	id := auth.IdentityFrom(c)
	if id == nil {
		return auth.ErrInvalidToken
	}
	return c.JSON(fiber.Map{"user": id})
}
