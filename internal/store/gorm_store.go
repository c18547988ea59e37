package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kitobbot/internal/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&BookModel{}, &UserModel{}, &DownloadModel{}, &BroadcastModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// UpsertUser inserts or refreshes a user record. Display fields are
// last-write-wins; started_at and total_downloads survive re-registration.
func (s *GormStore) UpsertUser(u domain.User) error {
	now := time.Now().UTC()
	model := UserModel{
		UserID:       u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		StartedAt:    now,
		LastActivity: now,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "last_activity"}),
	}).Create(&model).Error
}

// ListUserIDs returns every known user ID for broadcast fan-out.
func (s *GormStore) ListUserIDs() ([]int64, error) {
	var ids []int64
	if err := s.db.Model(&UserModel{}).Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AddBook inserts a new book with a zero download count. Returns
// ErrDuplicateCode when the code is already taken.
func (s *GormStore) AddBook(b domain.Book) error {
	model := BookModel{
		Code:        domain.NormalizeCode(b.Code),
		Title:       b.Title,
		BookFileRef: b.BookFileRef,
		TestFileRef: b.TestFileRef,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by its normalized code.
func (s *GormStore) GetBook(code string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "code = ?", domain.NormalizeCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// ListBooks returns all books, most recently created first.
func (s *GormStore) ListBooks() ([]domain.Book, error) {
	var models []BookModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// DeleteBook removes the book row and reports whether it existed. The
// caller is responsible for removing the underlying files.
func (s *GormStore) DeleteBook(code string) (bool, error) {
	res := s.db.Delete(&BookModel{}, "code = ?", domain.NormalizeCode(code))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RecordDownload appends a download row and bumps both counters as one
// logical unit. Not idempotent: a retry double-counts.
func (s *GormStore) RecordDownload(userID int64, code string) error {
	code = domain.NormalizeCode(code)
	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		row := DownloadModel{
			ID:           uuid.NewString(),
			UserID:       userID,
			BookCode:     code,
			DownloadedAt: now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&BookModel{}).Where("code = ?", code).
			UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&UserModel{}).Where("user_id = ?", userID).
			UpdateColumns(map[string]any{
				"total_downloads": gorm.Expr("total_downloads + 1"),
				"last_activity":   now,
			}).Error
	})
}

// RecordBroadcast appends one broadcast record.
func (s *GormStore) RecordBroadcast(message string, sentCount int) error {
	model := BroadcastModel{
		ID:        uuid.NewString(),
		Message:   message,
		SentAt:    time.Now().UTC(),
		SentCount: sentCount,
	}
	return s.db.Create(&model).Error
}

// Stats aggregates usage numbers: user totals plus the five most
// downloaded books.
func (s *GormStore) Stats() (domain.Stats, error) {
	var st domain.Stats
	var count int64
	if err := s.db.Model(&UserModel{}).Count(&count).Error; err != nil {
		return st, err
	}
	st.TotalUsers = int(count)
	if err := s.db.Model(&UserModel{}).Where("total_downloads > 0").Count(&count).Error; err != nil {
		return st, err
	}
	st.ActiveUsers = int(count)
	if err := s.db.Model(&DownloadModel{}).Count(&count).Error; err != nil {
		return st, err
	}
	st.TotalDownloads = int(count)

	var models []BookModel
	if err := s.db.Order("download_count DESC").Limit(5).Find(&models).Error; err != nil {
		return st, err
	}
	for _, m := range models {
		st.TopBooks = append(st.TopBooks, bookFromModel(m))
	}
	return st, nil
}

// Ping checks database connectivity for the health endpoint.
func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		Code:          m.Code,
		Title:         m.Title,
		BookFileRef:   m.BookFileRef,
		TestFileRef:   m.TestFileRef,
		DownloadCount: m.DownloadCount,
		CreatedAt:     m.CreatedAt,
	}
}
