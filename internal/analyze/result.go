package analyze

import (
	"sync"
	"time"
)

// Result is the outcome of one processed media item for one user. It only
// lives in memory; a restart clears it, like the session it belongs to.
type Result struct {
	SourceName string
	Transcript string
	Analysis   string
	CreatedAt  time.Time

	// Last question asked against this result and its answer, shown back
	// on the analyzer page after the Q&A redirect.
	Question string
	Answer   string
}

// SetQA records a question/answer pair on the user's current result.
// It is a no-op when the user has no result.
func (s *ResultStore) SetQA(username, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.results[username]; r != nil {
		r.Question = question
		r.Answer = answer
	}
}

// ResultStore retains the latest Result per username so the Q&A and export
// surfaces can refer back to it across requests.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]*Result)}
}

func (s *ResultStore) Set(username string, r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[username] = r
}

// Get returns the user's latest result, or nil when no media has been
// processed in this session.
func (s *ResultStore) Get(username string) *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[username]
}

func (s *ResultStore) Clear(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, username)
}
