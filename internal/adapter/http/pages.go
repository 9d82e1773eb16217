package http

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · CV Builder</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Paste the token issued by your identity provider.</p>
<form id="f"><textarea name="token" rows="4" cols="60" required></textarea><br><button type="submit">Continue</button></form>
<p id="err" role="alert"></p>
<script>
document.getElementById('f').addEventListener('submit', async function (e) {
  e.preventDefault();
  const res = await fetch('/auth/session', {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify({token: this.token.value.trim()})});
  if (res.ok) { window.location.assign({{.Next}}); return; }
  document.getElementById('err').textContent = 'Sign-in failed';
});
</script>
</body>
</html>`))

func (h *Handler) Home(c *fiber.Ctx) error {
	return c.Redirect("/editor", fiber.StatusFound)
}

// LoginPage serves the sign-in and sign-up form. next must be a local path.
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	next := c.Query("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/editor"
	}
	title := "Sign in"
	if c.Path() == "/signup" {
		title = "Sign up"
	}

	var buf bytes.Buffer
	if err := loginPage.Execute(&buf, struct{ Title, Next string }{title, next}); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
