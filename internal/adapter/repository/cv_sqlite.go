package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cv-builder/internal/domain"
	"cv-builder/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type cvRow struct {
	UserID    string `gorm:"primaryKey"`
	Data      datatypes.JSON
	UpdatedAt time.Time
}

func (cvRow) TableName() string { return "cvs" }

type exportRow struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Template  string
	Format    string
	FileName  string
	WidthPx   int
	HeightPx  int
	Overflow  bool
	SizeBytes int
	CreatedAt time.Time `gorm:"index"`
}

func (exportRow) TableName() string { return "cv_exports" }

// SQLiteStore backs both the document store and the export history with a
// local database file.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&cvRow{}, &exportRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, userID string) (*model.Resume, error) {
	var row cvRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cv: %w", err)
	}
	return decode(row.Data)
}

func (s *SQLiteStore) Save(ctx context.Context, userID string, doc *model.Resume) error {
	b, err := encode(doc)
	if err != nil {
		return err
	}
	row := cvRow{UserID: userID, Data: datatypes.JSON(b), UpdatedAt: time.Now()}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row)
	if tx.Error != nil {
		return fmt.Errorf("upsert cv: %w", tx.Error)
	}
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, r *domain.ExportRecord) error {
	row := exportRow{
		ID:        r.ID.String(),
		UserID:    r.UserID,
		Template:  r.Template,
		Format:    r.Format,
		FileName:  r.FileName,
		WidthPx:   r.WidthPx,
		HeightPx:  r.HeightPx,
		Overflow:  r.Overflow,
		SizeBytes: r.SizeBytes,
		CreatedAt: r.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, userID string, limit int) ([]domain.ExportRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var rows []exportRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}

	out := make([]domain.ExportRecord, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("export %q: %w", row.ID, err)
		}
		out = append(out, domain.ExportRecord{
			ID:        id,
			UserID:    row.UserID,
			Template:  row.Template,
			Format:    row.Format,
			FileName:  row.FileName,
			WidthPx:   row.WidthPx,
			HeightPx:  row.HeightPx,
			Overflow:  row.Overflow,
			SizeBytes: row.SizeBytes,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
