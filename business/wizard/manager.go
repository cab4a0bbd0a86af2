package wizard

import (
	"errors"
	"sync"
	"time"
	"vitalink/business/catalog"
	"vitalink/business/clients"
	"vitalink/domain"
	"vitalink/pkg/logger"
	"vitalink/pkg/metrics"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("wizard session not found")

const (
	defaultSessionTTL = 2 * time.Hour
	sweepInterval     = 5 * time.Minute
)

// EditSeed preloads a session from a stored recommendation. Only the protocol
// fields and the client binding carry over; the selection does not.
type EditSeed struct {
	RecordID    uint64
	Name        string
	Description string
	Binding     domain.ClientBinding
}

// Manager owns the in-memory wizard sessions. There is no cross-restart
// persistence: sessions die with the process or after the idle TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	provider  catalog.ProductProvider
	directory clients.Directory
	store     RecommendationStore
	storeURL  string
	ttl       time.Duration

	catalogOpts  []catalog.Option
	resolverOpts []clients.ResolverOption

	done chan struct{}
}

type ManagerOption func(*Manager)

func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithCatalogOptions and WithResolverOptions forward component options to
// every session the manager creates; tests use them to shrink debounce
// windows.
func WithCatalogOptions(opts ...catalog.Option) ManagerOption {
	return func(m *Manager) {
		m.catalogOpts = opts
	}
}

func WithResolverOptions(opts ...clients.ResolverOption) ManagerOption {
	return func(m *Manager) {
		m.resolverOpts = opts
	}
}

func NewManager(
	provider catalog.ProductProvider,
	directory clients.Directory,
	store RecommendationStore,
	storeURL string,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		provider:  provider,
		directory: directory,
		store:     store,
		storeURL:  storeURL,
		ttl:       defaultSessionTTL,
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	go m.janitor()

	return m
}

// Start opens a new session at Step 1. With a seed the protocol draft and
// client binding are preloaded from the stored record; the selection starts
// empty either way.
func (m *Manager) Start(practitionerID uint, seed *EditSeed) *Session {
	now := time.Now()
	sess := &Session{
		id:             uuid.NewString(),
		practitionerID: practitionerID,
		createdAt:      now,
		touchedAt:      now,
		catalog:        catalog.NewSearchIndex(m.provider, m.catalogOpts...),
		selection:      NewSelectionSet(),
		resolver:       clients.NewResolver(m.directory, practitionerID, m.resolverOpts...),
		step:           StepSelect,
		store:          m.store,
		storeURL:       m.storeURL,
	}

	if seed != nil {
		sess.editRecordID = seed.RecordID
		sess.draft = ProtocolDraft{
			Name:        seed.Name,
			Description: seed.Description,
		}
		sess.resolver.Restore(seed.Binding)
	}

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	metrics.WizardSessionsStarted.Inc()
	logger.Info("wizard session started",
		"session_id", sess.id,
		"practitioner_id", practitionerID,
		"edit_of", sess.editRecordID,
	)

	return sess
}

// Get returns the session if it exists and belongs to the practitioner.
func (m *Manager) Get(id string, practitionerID uint) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok || sess.PractitionerID() != practitionerID {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Abandon discards the session and everything in it.
func (m *Manager) Abandon(id string, practitionerID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok || sess.PractitionerID() != practitionerID {
		return ErrSessionNotFound
	}

	delete(m.sessions, id)

	return nil
}

// Stop halts the janitor. Live sessions are left to die with the process.
func (m *Manager) Stop() {
	close(m.done)
}

func (m *Manager) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.touchedAt)
		sess.mu.Unlock()

		if idle > m.ttl {
			delete(m.sessions, id)
			logger.Debug("wizard session expired", "session_id", id)
		}
	}
}
