package domain

import (
	"strings"
	"time"
)

// Book is a unit of content unlockable by its code: a primary PDF plus an
// associated test document.
type Book struct {
	Code          string
	Title         string
	BookFileRef   string
	TestFileRef   string
	DownloadCount int
	CreatedAt     time.Time
}

// User is a bot user registered via /start.
type User struct {
	ID             int64
	Username       string
	FirstName      string
	LastName       string
	StartedAt      time.Time
	LastActivity   time.Time
	TotalDownloads int
}

// Download is an append-only record of one successful delivery.
type Download struct {
	ID           string
	UserID       int64
	BookCode     string
	DownloadedAt time.Time
}

// Broadcast is an append-only record of one completed fan-out.
type Broadcast struct {
	ID        string
	Message   string
	SentAt    time.Time
	SentCount int
}

// Stats aggregates usage numbers for the admin panel.
type Stats struct {
	TotalUsers     int
	ActiveUsers    int
	TotalDownloads int
	TopBooks       []Book
}

// NormalizeCode brings a book code to its canonical form. Codes are always
// stored and compared uppercase with surrounding whitespace removed.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
