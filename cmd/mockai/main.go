// Command mockai serves canned /v1/chat replies so the editor's AI helpers
// can be exercised without a model. Point AI_SERVICE_URL at it.
package main

import (
	"encoding/json"
	"os"
	"strings"

	"cv-builder/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

const draftReply = "Results-driven engineer with experience building reliable web services. " +
	"Comfortable owning features from design to production and mentoring teammates."

func reply(input string) map[string]string {
	if strings.Contains(input, "Applicant Tracking Systems") {
		cv := input
		if i := strings.Index(input, "CV Content: "); i >= 0 {
			cv = input[i+len("CV Content: "):]
			if j := strings.Index(cv, "\n\nJob Description:"); j >= 0 {
				cv = cv[:j]
			}
		}
		return map[string]string{"optimizedCvContent": strings.TrimSpace(cv)}
	}
	return map[string]string{"cvDraft": draftReply}
}

func main() {
	log, err := logger.New("debug", "console")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/v1/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil || req.Input == "" {
			return fiber.NewError(fiber.StatusBadRequest, "input is required")
		}
		out, err := json.Marshal(reply(req.Input))
		if err != nil {
			return err
		}
		log.Debug("chat", zap.Int("input_len", len(req.Input)))
		// Fenced like a real model reply so the client's JSON extraction runs.
		return c.JSON(fiber.Map{"agent": "mock", "output": "```json\n" + string(out) + "\n```"})
	})

	addr := ":8000"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	log.Info("mock ai listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("listen failed", zap.Error(err))
	}
}
