package userdir

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/icmoura/jarvis/internal/auth"
	"github.com/icmoura/jarvis/internal/github"
	"github.com/icmoura/jarvis/internal/logger"
)

const (
	// BootstrapAdmin is the administrator record created when no user
	// document exists yet.
	BootstrapAdmin = "israel"
	// DefaultTempPassword is the well-known temporary password used for the
	// bootstrap admin and for admin-triggered resets. Accounts holding it
	// are forced into a password change on login.
	DefaultTempPassword = "senhareset"
)

// Remote is the slice of the GitHub client the store needs.
type Remote interface {
	Fetch(ctx context.Context) (*github.Document, error)
	Put(ctx context.Context, content []byte, sha, message string) (string, error)
}

// Store synchronizes the in-memory directory with the remote document. It
// caches the last-seen revision (blob SHA) and presents it on every write;
// a concurrent writer from another process makes the next write fail with a
// stale revision instead of silently losing data.
type Store struct {
	remote Remote

	mu  sync.Mutex
	sha string
}

func NewStore(remote Remote) *Store {
	return &Store{remote: remote}
}

// Load fetches the remote document. When none exists it synthesizes the
// bootstrap directory, tries to persist it create-only, and returns the
// in-memory directory either way: the app stays usable without the store,
// changes just won't survive a restart.
func (s *Store) Load(ctx context.Context) (Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.remote.Fetch(ctx)
	if errors.Is(err, github.ErrNotFound) {
		return s.bootstrapLocked(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load user directory: %w", err)
	}

	dir, err := Decode(doc.Content)
	if err != nil {
		return nil, err
	}
	s.sha = doc.SHA
	return dir, nil
}

// Save persists dir under the cached revision, re-fetching afterwards so
// the next write presents the fresh SHA. On a stale or transient failure it
// makes a single create-only attempt before surfacing the error; callers
// must treat the in-memory directory as unreliable when Save fails.
func (s *Store) Save(ctx context.Context, dir Directory, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := dir.Encode()
	if err != nil {
		return err
	}

	if s.sha != "" {
		if _, err := s.remote.Put(ctx, content, s.sha, message); err == nil {
			s.refreshLocked(ctx)
			return nil
		} else if !errors.Is(err, github.ErrStaleRevision) && !errors.Is(err, github.ErrTransient) {
			return fmt.Errorf("save user directory: %w", err)
		}
		logger.Warn("Save with revision %s failed, attempting create-only write", s.sha)
	}

	if _, err := s.remote.Put(ctx, content, "", message); err != nil {
		return fmt.Errorf("save user directory: %w", err)
	}
	s.refreshLocked(ctx)
	return nil
}

// Revision returns the cached revision token. Empty until the first
// successful fetch.
func (s *Store) Revision() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sha
}

func (s *Store) bootstrapLocked(ctx context.Context) (Directory, error) {
	hash, err := auth.HashPassword(DefaultTempPassword)
	if err != nil {
		return nil, err
	}
	dir := Directory{
		BootstrapAdmin: Record{
			PasswordHash: hash,
			Role:         RoleAdmin,
			FirstLogin:   true,
			ResetByAdmin: false,
		},
	}

	content, err := dir.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := s.remote.Put(ctx, content, "", "Initial users.json creation"); err != nil {
		logger.Error("Failed to create initial user document: %v", err)
		return dir, nil
	}
	s.refreshLocked(ctx)
	logger.Info("Initial user document created with bootstrap admin %q", BootstrapAdmin)
	return dir, nil
}

// refreshLocked re-fetches the document to pick up the post-write SHA.
// Caller holds mu.
func (s *Store) refreshLocked(ctx context.Context) {
	doc, err := s.remote.Fetch(ctx)
	if err != nil {
		logger.Warn("Could not refresh revision after write: %v", err)
		s.sha = ""
		return
	}
	s.sha = doc.SHA
}
