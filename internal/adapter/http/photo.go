package http

import (
	"io"

	"cv-builder/internal/apperr"
	"cv-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UploadPhoto stores the multipart "photo" file and points the document at
// it. A replaced photo is deleted afterwards.
func (h *Handler) UploadPhoto(c *fiber.Ctx) error {
	fh, err := c.FormFile("photo")
	if err != nil {
		return &apperr.UploadError{Reason: "missing photo file", Err: err}
	}
	if fh.Size > usecase.MaxPhotoBytes {
		return &apperr.UploadError{Reason: "file exceeds 2 MiB", TooLarge: true}
	}
	f, err := fh.Open()
	if err != nil {
		return &apperr.UploadError{Reason: "unreadable upload", Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxPhotoBytes+1))
	if err != nil {
		return &apperr.UploadError{Reason: "unreadable upload", Err: err}
	}

	s, err := h.session(c)
	if err != nil {
		return err
	}
	uri, err := h.photos.Upload(c.UserContext(), s.UserID(), data, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return err
	}

	previous, err := s.SetPhoto(uri)
	if err != nil {
		return err
	}
	if previous != "" && previous != uri {
		if err := h.photos.Remove(c.UserContext(), s.UserID(), previous); err != nil {
			h.logger.Warn("failed to delete replaced photo", zap.String("user_id", s.UserID()), zap.Error(err))
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": uri})
}

// RemovePhoto clears the field first; a failed object delete is reported
// but the document no longer references the photo.
func (h *Handler) RemovePhoto(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if s.Snapshot().PersonalInfo.PhotoURL == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}
	uri, err := s.SetPhoto("")
	if err != nil {
		return err
	}
	if err := h.photos.Remove(c.UserContext(), s.UserID(), uri); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
