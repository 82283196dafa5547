package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// KeyPrefix namespaces persisted carts in the key-value store.
const KeyPrefix = "cart:"

// Store is one session's cart. Each mutating method returns the view computed
// under the same lock as the mutation. Persistence is a separate, explicit step.
type Store struct {
	mu   sync.Mutex
	cart Cart
	key  string
	kv   storage.KV
	log  *slog.Logger

	// version counts mutations; saved is the version last written.
	version uint64
	saved   uint64

	// lastUsed is guarded by the owning Manager's mutex.
	lastUsed time.Time
}

// Key returns the persistence key for the store's session.
func (s *Store) Key() string {
	return s.key
}

// Persistent reports whether the store writes through to a key-value backend.
func (s *Store) Persistent() bool {
	return s.kv != nil
}

func (s *Store) Add(p models.Product) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(p)
	s.version++
	return Render(&s.cart)
}

// RemoveAt deletes the entry at index. On ErrInvalidIndex the returned view
// is the unchanged cart.
func (s *Store) RemoveAt(index int) (models.Product, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.cart.RemoveAt(index)
	if err == nil {
		s.version++
	}
	return removed, Render(&s.cart), err
}

func (s *Store) Clear() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.version++
	return Render(&s.cart)
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Render(&s.cart)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Count()
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Total()
}

func (s *Store) Entries() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Entries()
}

// Snapshot returns the entries and their total as of one instant.
func (s *Store) Snapshot() ([]models.Product, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Entries(), s.cart.Total()
}

// dirty reports whether there are mutations Persist has not written.
func (s *Store) dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version != s.saved
}

// Persist writes the full ordered entry list, or deletes the key when the
// cart is empty. It is a no-op for ephemeral stores. The lock is held across
// the write so concurrent persists cannot reorder.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv == nil {
		s.saved = s.version
		return nil
	}

	if s.cart.Count() == 0 {
		if err := s.kv.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		s.saved = s.version
		return nil
	}

	data, err := json.Marshal(&s.cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.saved = s.version
	return nil
}

// restore loads persisted state. Missing state yields an empty cart; corrupt
// state is logged and also yields an empty cart. Only backend failures are returned.
func (s *Store) restore(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}

	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	var restored Cart
	if err := json.Unmarshal(data, &restored); err != nil {
		s.log.Warn("corrupt persisted cart state, starting empty", "key", s.key, "error", err)
		return nil
	}

	s.mu.Lock()
	s.cart = restored
	s.mu.Unlock()
	return nil
}


// Manager owns the stores of live sessions. A session becomes live when it
// mutates its cart and stops being live on Teardown, Sweep or Close.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	kv     storage.KV
	log    *slog.Logger
	now    func() time.Time
}

// NewManager creates a manager persisting through kv. A nil kv makes every
// store ephemeral.
func NewManager(kv storage.KV, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		stores: make(map[string]*Store),
		kv:     kv,
		log:    log,
		now:    time.Now,
	}
}

// Open returns the session's live store, creating it and restoring persisted
// state on first use. A backend read failure is logged and the session starts
// empty. The restore runs without the manager lock held.
func (m *Manager) Open(ctx context.Context, sessionID string) *Store {
	if s := m.touch(sessionID); s != nil {
		return s
	}

	loaded := m.load(ctx, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	// another request may have opened the session during the restore
	if s, ok := m.stores[sessionID]; ok {
		s.lastUsed = m.now()
		return s
	}
	loaded.lastUsed = m.now()
	m.stores[sessionID] = loaded
	return loaded
}

// Peek returns the session's live store if there is one. Otherwise it returns
// a detached store holding the persisted state, which the manager does not
// keep. Mutations on a detached store are lost; use it for reads only.
func (m *Manager) Peek(ctx context.Context, sessionID string) *Store {
	if s := m.touch(sessionID); s != nil {
		return s
	}
	return m.load(ctx, sessionID)
}

func (m *Manager) touch(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stores[sessionID]
	if !ok {
		return nil
	}
	s.lastUsed = m.now()
	return s
}

func (m *Manager) load(ctx context.Context, sessionID string) *Store {
	s := &Store{
		key: KeyPrefix + sessionID,
		kv:  m.kv,
		log: m.log,
	}
	if err := s.restore(ctx); err != nil {
		m.log.Error("failed to restore cart, starting empty", "session_id", sessionID, "error", err)
	}
	return s
}

// Teardown persists the session's cart and drops it from memory. A session
// used or mutated while the persist ran stays live. On a persist error the
// store is kept so its state is not lost.
func (m *Manager) Teardown(ctx context.Context, sessionID string) error {
	_, err := m.teardown(ctx, sessionID)
	return err
}

func (m *Manager) teardown(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	s, ok := m.stores[sessionID]
	var stamp time.Time
	if ok {
		stamp = s.lastUsed
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := s.Persist(ctx); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.stores[sessionID]; !ok || cur != s || !cur.lastUsed.Equal(stamp) || s.dirty() {
		return false, nil
	}
	delete(m.stores, sessionID)
	return true, nil
}

// Sweep tears down every session unused for longer than idle and returns how
// many were dropped.
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var expired []string
	for id, s := range m.stores {
		if s.lastUsed.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	var (
		dropped int
		errs    []error
	)
	for _, id := range expired {
		ok, err := m.teardown(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
			continue
		}
		if ok {
			dropped++
		}
	}
	return dropped, errors.Join(errs...)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped, err := m.Sweep(ctx, idle)
			if err != nil {
				m.log.Error("failed to persist idle carts", "error", err)
			}
			if dropped > 0 {
				m.log.Debug("idle carts torn down", "count", dropped, "live", m.Len())
			}
		}
	}
}

// Close tears down every live session, returning the joined persist errors.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	var errs []error
	for id, s := range stores {
		if err := s.Persist(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.stores)
}
