package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "identity"

// PublicPaths are reachable without a session.
var PublicPaths = map[string]bool{
	"/":             true,
	"/login":        true,
	"/signup":       true,
	"/healthz":      true,
	"/metrics":      true,
	"/auth/session": true,
}

// publicPrefixes serve static files headless capture must fetch without a
// cookie.
var publicPrefixes = []string{"/media/"}

func IsPublic(path string) bool {
	if PublicPaths[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// LoginURL is where an unauthenticated page request is sent; next carries
// the original path and query.
func LoginURL(original string) string {
	return "/login?next=" + url.QueryEscape(original)
}

// Guard authenticates every non-public request. The token comes from the
// session cookie or a bearer header. API callers get 401, page requests a
// redirect to the login page.
func Guard(svc *Service, cookieName string, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		if IsPublic(c.Path()) {
			return c.Next()
		}

		token := TokenFrom(c, cookieName)
		if token != "" {
			id, err := svc.Authenticate(c.UserContext(), token)
			if err == nil {
				c.Locals(identityKey, id)
				return c.Next()
			}
			logger.Debug("rejected session", zap.String("path", c.Path()), zap.Error(err))
		}

		if strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/auth/me" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Redirect(LoginURL(c.OriginalURL()), fiber.StatusFound)
	}
}

// TokenFrom reads the session cookie, falling back to a bearer header.
func TokenFrom(c *fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}
	h := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// IdentityFrom returns the user set by Guard, or nil on public routes.
func IdentityFrom(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(identityKey).(*Identity)
	return id
}
