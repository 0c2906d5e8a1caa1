package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cynit/hub/internal/hub/domain"
	"github.com/cynit/hub/pkg/idx"
)

// ReuseSlack is how much lifetime a token must have left before an exchange
// will hand out the existing session instead of performing a fresh exchange.
const ReuseSlack = 30 * time.Second

// SessionStore holds token sessions in memory for the process lifetime and
// mirrors each session's artifacts to disk. Session ids are generated ULIDs,
// never caller input, so the directory name cannot be used for path
// injection.
type SessionStore struct {
	dataDir string

	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore(dataDir string) *SessionStore {
	return &SessionStore{
		dataDir:  dataDir,
		sessions: make(map[string]domain.Session),
	}
}

// Create records a successful exchange and writes the session artifacts
// (access_token.txt and scopes.json) under a session-scoped directory.
func (s *SessionStore) Create(issuer, opBase, accessToken, scope string, expiresIn int) (domain.Session, error) {
	now := time.Now()
	session := domain.Session{
		ID:          idx.New().String(),
		OPBase:      opBase,
		Issuer:      issuer,
		AccessToken: accessToken,
		Scope:       scope,
		CreatedAt:   now,
	}
	if expiresIn > 0 {
		session.ExpiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	}

	if err := s.writeArtifacts(session); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// Get looks up a session by id.
func (s *SessionStore) Get(id string) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// List returns all sessions, newest first. ULIDs sort by creation time, so
// ordering by id is ordering by age.
func (s *SessionStore) List() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// FindLive returns the newest session for the same issuer and server whose
// token still has more than ReuseSlack of lifetime left.
func (s *SessionStore) FindLive(issuer, opBase string) (domain.Session, bool) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best domain.Session
	var found bool
	for _, session := range s.sessions {
		if session.Issuer != issuer || session.OPBase != opBase {
			continue
		}
		if !session.Live(now, ReuseSlack) {
			continue
		}
		if !found || session.ID > best.ID {
			best = session
			found = true
		}
	}
	return best, found
}

func (s *SessionStore) writeArtifacts(session domain.Session) error {
	dir := filepath.Join(s.dataDir, session.ID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("service: failed to create session dir: %w", err)
	}

	tokenFile := filepath.Join(dir, "access_token.txt")
	if err := os.WriteFile(tokenFile, []byte(session.AccessToken), 0o600); err != nil {
		return fmt.Errorf("service: failed to write access token: %w", err)
	}

	scopes, err := json.Marshal(map[string]string{"scope": session.Scope})
	if err != nil {
		return err
	}
	scopesFile := filepath.Join(dir, "scopes.json")
	if err := os.WriteFile(scopesFile, scopes, 0o600); err != nil {
		return fmt.Errorf("service: failed to write scopes: %w", err)
	}

	return nil
}
