package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/domain/repository"
	"github.com/sangkips/admin-console/internal/observability/metrics"
	"github.com/sangkips/admin-console/pkg/apperror"
)

// Session is one interactive console session. It owns its own catalog tables
// and invoice composer; sessions share nothing with each other.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Data      *ReferenceData
	Composer  *InvoiceComposer

	loaded chan struct{}

	mu       sync.Mutex
	lastSeen time.Time
}

// Loaded is closed once the initial catalog load has finished, whatever its outcome
func (s *Session) Loaded() <-chan struct{} {
	return s.loaded
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionService creates, finds and expires console sessions
type SessionService struct {
	loader      *CatalogLoader
	invoices    repository.InvoiceRepository
	composerOpt ComposerOptions
	ttl         time.Duration
	loadTimeout time.Duration
	logger      *zap.Logger
	metrics     *metrics.InvoiceMetrics

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	loader *CatalogLoader,
	invoices repository.InvoiceRepository,
	composerOpt ComposerOptions,
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.InvoiceMetrics,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loadTimeout := composerOpt.SubmitTimeout
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Second
	}
	return &SessionService{
		loader:      loader,
		invoices:    invoices,
		composerOpt: composerOpt,
		ttl:         ttl,
		loadTimeout: loadTimeout,
		logger:      logger,
		metrics:     m,
		sessions:    make(map[uuid.UUID]*Session),
		now:         time.Now,
	}
}

// Create mounts a new session and starts loading its catalogs in the background.
// The load outlives the request that created the session.
func (s *SessionService) Create(ctx context.Context) *Session {
	now := s.now()
	data := NewReferenceData()
	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		Data:      data,
		Composer:  NewInvoiceComposer(data, s.invoices, s.composerOpt),
		loaded:    make(chan struct{}),
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)

	loadCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(sess.loaded)
		ctx, cancel := context.WithTimeout(loadCtx, s.loadTimeout)
		defer cancel()
		// failures are logged by the loader and leave the tables empty
		_ = s.loader.Load(ctx, data)
	}()

	s.logger.Info("console session created", zap.String("session_id", sess.ID.String()))
	return sess
}

// Get returns a live session and marks it as used
func (s *SessionService) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	now := s.now()
	if s.ttl > 0 && now.Sub(sess.idleSince()) > s.ttl {
		s.Delete(id)
		return nil, apperror.ErrSessionNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Delete ends a session; deleting an unknown session is a no-op
func (s *SessionService) Delete(id uuid.UUID) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if ok {
		s.metrics.SetActiveSessions(count)
		s.logger.Info("console session ended", zap.String("session_id", id.String()))
	}
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes every session idle for longer than the TTL and returns how many were removed
func (s *SessionService) Cleanup() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.SetActiveSessions(count)
		s.logger.Info("expired console sessions removed", zap.Int("removed", removed))
	}
	return removed
}

// Drain waits for the background slip copies of every live session
func (s *SessionService) Drain() {
	s.mu.RLock()
	live := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.RUnlock()

	for _, sess := range live {
		sess.Composer.WaitCopies()
	}
}

// Run expires idle sessions every interval until ctx is done
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
