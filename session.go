package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"perio_dictation/internal/voice"
)

var errSessionNotFound = errors.New("session not found")

// Session is one clinician's dictation during one exam. It owns the current
// input mode between utterances; the mutex keeps utterances of the same
// session in order.
type Session struct {
	mu         sync.Mutex
	id         string
	clinic     string
	mode       voice.InputMode
	utterances int
	createdAt  time.Time
	lastUsedAt time.Time
}

// Apply parses transcript in the session's current mode and moves the
// session to the mode the parser reports.
func (s *Session) Apply(profile *ClinicProfile, transcript string, confidence float64, now time.Time) voice.ParsedVoiceData {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := profile.Parse(transcript, s.mode, confidence)
	s.mode = data.Mode
	s.utterances++
	s.lastUsedAt = now
	return data
}

// Info returns a snapshot of the session.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:         s.id,
		Clinic:     s.clinic,
		Mode:       s.mode,
		Utterances: s.utterances,
		CreatedAt:  s.createdAt,
		LastUsedAt: s.lastUsedAt,
	}
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsedAt)
}

// SessionStore keeps open sessions in memory and evicts idle ones.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	metrics     *Metrics
	now         func() time.Time
}

// NewSessionStore creates a store. idleTimeout <= 0 disables eviction.
func NewSessionStore(idleTimeout time.Duration, metrics *Metrics) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		metrics:     metrics,
		now:         time.Now,
	}
}

// Create opens a session. An invalid mode starts in pocket depth.
func (ss *SessionStore) Create(ctx context.Context, clinic string, mode voice.InputMode) *Session {
	if !mode.IsValid() {
		mode = voice.ModePocketDepth
	}
	now := ss.now()
	s := &Session{
		id:         uuid.NewString(),
		clinic:     clinic,
		mode:       mode,
		createdAt:  now,
		lastUsedAt: now,
	}

	ss.mu.Lock()
	ss.sessions[s.id] = s
	ss.mu.Unlock()

	if ss.metrics != nil {
		ss.metrics.ActiveSessions.Add(ctx, 1)
	}
	return s
}

func (ss *SessionStore) Get(id string) (*Session, error) {
	ss.mu.RLock()
	s, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

// Delete closes a session.
func (ss *SessionStore) Delete(ctx context.Context, id string) error {
	ss.mu.Lock()
	_, ok := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()
	if !ok {
		return errSessionNotFound
	}
	if ss.metrics != nil {
		ss.metrics.ActiveSessions.Add(ctx, -1)
	}
	return nil
}

func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Sweep evicts sessions idle for longer than the timeout and returns how
// many were removed.
func (ss *SessionStore) Sweep(ctx context.Context) int {
	if ss.idleTimeout <= 0 {
		return 0
	}
	now := ss.now()

	ss.mu.Lock()
	var removed int
	for id, s := range ss.sessions {
		if s.idleSince(now) > ss.idleTimeout {
			delete(ss.sessions, id)
			removed++
		}
	}
	ss.mu.Unlock()

	if removed > 0 {
		if ss.metrics != nil {
			ss.metrics.ActiveSessions.Add(ctx, int64(-removed))
		}
		slog.Info("evicted idle dictation sessions", "count", removed)
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (ss *SessionStore) Run(ctx context.Context) {
	if ss.idleTimeout <= 0 {
		return
	}
	interval := ss.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ss.Sweep(ctx)
		}
	}
}
