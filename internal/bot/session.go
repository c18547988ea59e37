package bot

import "sync"

// step identifies where a multi-message conversation stands for one user.
type step int

const (
	stepNone           step = iota
	stepAwaitBookCode       // unlock: subscription confirmed, expecting a book code
	stepAdminCode           // add-book: expecting the new code
	stepAdminTitle          // add-book: expecting the title
	stepAdminBookFile       // add-book: expecting the book PDF
	stepAdminTestFile       // add-book: expecting the test document
	stepAdminBroadcast      // broadcast: expecting the message text
)

// bookDraft carries the partial add-book data between steps. Only the
// fields stashed by completed steps are set.
type bookDraft struct {
	code        string
	title       string
	bookFileRef string
}

type session struct {
	step  step
	draft bookDraft
}

// sessionMap tracks conversation state per user. State is transient by
// design: a restart drops every conversation back to the start.
type sessionMap struct {
	mu sync.Mutex
	m  map[int64]session
}

func newSessionMap() *sessionMap {
	return &sessionMap{m: make(map[int64]session)}
}

func (s *sessionMap) get(userID int64) session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

func (s *sessionMap) set(userID int64, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = sess
}

func (s *sessionMap) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
