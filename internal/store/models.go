package store

import "time"

// GORM models used for persistence.
type BookModel struct {
	Code          string    `gorm:"primaryKey"`
	Title         string    `gorm:"not null"`
	BookFileRef   string    `gorm:"not null"`
	TestFileRef   string    `gorm:"not null"`
	DownloadCount int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (BookModel) TableName() string { return "books" }

type UserModel struct {
	UserID         int64 `gorm:"primaryKey;autoIncrement:false"`
	Username       string
	FirstName      string
	LastName       string
	StartedAt      time.Time `gorm:"not null"`
	LastActivity   time.Time `gorm:"not null"`
	TotalDownloads int       `gorm:"not null;default:0"`
}

func (UserModel) TableName() string { return "users" }

type DownloadModel struct {
	ID           string    `gorm:"primaryKey"`
	UserID       int64     `gorm:"not null;index"`
	BookCode     string    `gorm:"not null;index"`
	DownloadedAt time.Time `gorm:"not null"`
}

func (DownloadModel) TableName() string { return "downloads" }

type BroadcastModel struct {
	ID        string    `gorm:"primaryKey"`
	Message   string    `gorm:"not null"`
	SentAt    time.Time `gorm:"not null"`
	SentCount int       `gorm:"not null;default:0"`
}

func (BroadcastModel) TableName() string { return "broadcasts" }
