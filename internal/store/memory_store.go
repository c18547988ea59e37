package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kitobbot/internal/domain"
)

// MemoryStore keeps all records in process memory. It backs the workflow
// tests and local runs without a database.
type MemoryStore struct {
	mu         sync.RWMutex
	books      map[string]domain.Book
	order      []string // book codes, insertion order
	users      map[int64]domain.User
	userOrder  []int64
	downloads  []domain.Download
	broadcasts []domain.Broadcast
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[string]domain.Book),
		users: make(map[int64]domain.User),
	}
}

// UpsertUser inserts or refreshes a user, keeping started_at and the
// download counter across repeated /start.
func (m *MemoryStore) UpsertUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := m.users[u.ID]
	if ok {
		existing.Username = u.Username
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		existing.LastActivity = now
		m.users[u.ID] = existing
		return nil
	}
	u.StartedAt = now
	u.LastActivity = now
	u.TotalDownloads = 0
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return nil
}

// ListUserIDs returns user IDs in registration order.
func (m *MemoryStore) ListUserIDs() ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, len(m.userOrder))
	copy(ids, m.userOrder)
	return ids, nil
}

// AddBook stores a new book; duplicate codes are rejected.
func (m *MemoryStore) AddBook(b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := domain.NormalizeCode(b.Code)
	if _, exists := m.books[code]; exists {
		return ErrDuplicateCode
	}
	b.Code = code
	b.DownloadCount = 0
	b.CreatedAt = time.Now().UTC()
	m.books[code] = b
	m.order = append(m.order, code)
	return nil
}

// GetBook retrieves a book by its normalized code.
func (m *MemoryStore) GetBook(code string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[domain.NormalizeCode(code)]
	return b, ok, nil
}

// ListBooks returns books most recently added first.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		if b, ok := m.books[m.order[i]]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// DeleteBook removes the book and reports whether it existed.
func (m *MemoryStore) DeleteBook(code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code = domain.NormalizeCode(code)
	if _, ok := m.books[code]; !ok {
		return false, nil
	}
	delete(m.books, code)
	filtered := m.order[:0]
	for _, c := range m.order {
		if c != code {
			filtered = append(filtered, c)
		}
	}
	m.order = filtered
	return true, nil
}

// RecordDownload appends a download row and bumps both counters.
func (m *MemoryStore) RecordDownload(userID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code = domain.NormalizeCode(code)
	now := time.Now().UTC()
	m.downloads = append(m.downloads, domain.Download{
		ID:           uuid.NewString(),
		UserID:       userID,
		BookCode:     code,
		DownloadedAt: now,
	})
	if b, ok := m.books[code]; ok {
		b.DownloadCount++
		m.books[code] = b
	}
	if u, ok := m.users[userID]; ok {
		u.TotalDownloads++
		u.LastActivity = now
		m.users[userID] = u
	}
	return nil
}

// RecordBroadcast appends one broadcast record.
func (m *MemoryStore) RecordBroadcast(message string, sentCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, domain.Broadcast{
		ID:        uuid.NewString(),
		Message:   message,
		SentAt:    time.Now().UTC(),
		SentCount: sentCount,
	})
	return nil
}

// Stats aggregates usage numbers.
func (m *MemoryStore) Stats() (domain.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := domain.Stats{
		TotalUsers:     len(m.users),
		TotalDownloads: len(m.downloads),
	}
	for _, u := range m.users {
		if u.TotalDownloads > 0 {
			st.ActiveUsers++
		}
	}
	books := make([]domain.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].DownloadCount > books[j].DownloadCount
	})
	if len(books) > 5 {
		books = books[:5]
	}
	st.TopBooks = books
	return st, nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping() error { return nil }

// User returns a user snapshot; test helper.
func (m *MemoryStore) User(id int64) (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok
}

// Downloads returns a copy of the download log; test helper.
func (m *MemoryStore) Downloads() []domain.Download {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Download, len(m.downloads))
	copy(res, m.downloads)
	return res
}

// Broadcasts returns a copy of the broadcast log; test helper.
func (m *MemoryStore) Broadcasts() []domain.Broadcast {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Broadcast, len(m.broadcasts))
	copy(res, m.broadcasts)
	return res
}
