package service

import (
	"sync"

	"github.com/cynit/hub/pkg/certx"
	"github.com/cynit/hub/pkg/idx"
)

// ResultService keeps decoded certificate summaries around so they can be
// exported in different formats after the upload request has finished. All
// in memory; a restart forgets them, which is fine for what is essentially
// a clipboard.
type ResultService struct {
	mu      sync.RWMutex
	results map[string]*certx.CertificateInfo
}

func NewResultService() *ResultService {
	return &ResultService{
		results: make(map[string]*certx.CertificateInfo),
	}
}

// Save stores a decode result and returns its token.
func (s *ResultService) Save(info *certx.CertificateInfo) string {
	token := idx.New().String()

	s.mu.Lock()
	s.results[token] = info
	s.mu.Unlock()

	return token
}

// Get looks up a result by token.
func (s *ResultService) Get(token string) (*certx.CertificateInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.results[token]
	return info, ok
}
