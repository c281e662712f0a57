// Package memory provides in-memory wizard and checkout session stores.
//
// Sessions are per-user live state; losing them on restart only means the
// user starts the wizard again. A mutex serializes all mutations, which is
// the only synchronization the single-writer session model needs.
package memory

import (
	"context"
	"sync"

	"github.com/impulso-music/impulso/internal/services/campaign/domain/checkout"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/wizard"
	"github.com/impulso-music/impulso/internal/services/campaign/storage"
)

// Store is an in-memory implementation of WizardStore and CheckoutStore.
type Store struct {
	mu        sync.Mutex
	wizards   map[string]wizard.Session
	checkouts map[string]checkout.Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		wizards:   make(map[string]wizard.Session),
		checkouts: make(map[string]checkout.Session),
	}
}

// PutWizard stores a wizard session.
func (s *Store) PutWizard(_ context.Context, session wizard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizards[session.ID] = session
	return nil
}

// GetWizard retrieves a wizard session by id.
func (s *Store) GetWizard(_ context.Context, sessionID string) (wizard.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.wizards[sessionID]
	if !ok {
		return wizard.Session{}, storage.ErrNotFound
	}
	return session, nil
}

// DeleteWizard removes a wizard session. Deleting an absent session is a no-op.
func (s *Store) DeleteWizard(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, sessionID)
	return nil
}

// PutCheckout stores a checkout session.
func (s *Store) PutCheckout(_ context.Context, session checkout.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[session.ID] = session
	return nil
}

// GetCheckout retrieves a checkout session by id.
func (s *Store) GetCheckout(_ context.Context, sessionID string) (checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.checkouts[sessionID]
	if !ok {
		return checkout.Session{}, storage.ErrNotFound
	}
	return session, nil
}

// DeleteCheckout removes a checkout session. Absent sessions are a no-op.
func (s *Store) DeleteCheckout(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkouts, sessionID)
	return nil
}

// TickCheckout applies one countdown tick under the store lock so a tick
// can never race a confirmation or deletion.
func (s *Store) TickCheckout(_ context.Context, sessionID string) (checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.checkouts[sessionID]
	if !ok {
		return checkout.Session{}, storage.ErrNotFound
	}
	session.Tick()
	s.checkouts[sessionID] = session
	return session, nil
}
