package store

import (
	"errors"

	"kitobbot/internal/domain"
)

// ErrDuplicateCode is returned by AddBook when the code is already taken.
var ErrDuplicateCode = errors.New("book code already exists")

// Store defines persistence operations for books, users, downloads and
// broadcasts.
type Store interface {
	// users
	UpsertUser(u domain.User) error
	ListUserIDs() ([]int64, error)

	// books
	AddBook(b domain.Book) error
	GetBook(code string) (domain.Book, bool, error)
	ListBooks() ([]domain.Book, error)
	DeleteBook(code string) (bool, error)

	// events
	RecordDownload(userID int64, code string) error
	RecordBroadcast(message string, sentCount int) error

	// admin panel
	Stats() (domain.Stats, error)

	// health
	Ping() error
}
