package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportRecord is one successful PDF export, kept as the user's export
// history.
type ExportRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Template  string    `json:"template"`
	Format    string    `json:"format"`
	FileName  string    `json:"file_name"`
	WidthPx   int       `json:"width_px"`
	HeightPx  int       `json:"height_px"`
	Overflow  bool      `json:"overflow"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
