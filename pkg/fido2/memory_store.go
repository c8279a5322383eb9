// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-fido2-server.
//
// go-fido2-server is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package fido2

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistrationStore is an in-memory implementation of RegistrationStore.
// This is intended for development and testing only.
//
// The challenge is the unique key. An optional TTL expires PENDING entries:
// an expired entry behaves as if its challenge were unknown. REGISTERED
// entries never expire.
type MemoryRegistrationStore struct {
	mu          sync.RWMutex
	byChallenge map[string]*RegistrationEntry
	byUsername  map[string][]string
	ttl         time.Duration
}

// NewMemoryRegistrationStore creates a new in-memory registration store
// without PENDING-entry expiry.
func NewMemoryRegistrationStore() *MemoryRegistrationStore {
	return NewMemoryRegistrationStoreWithTTL(0)
}

// NewMemoryRegistrationStoreWithTTL creates a new in-memory registration
// store whose PENDING entries expire after ttl. A zero ttl disables expiry.
func NewMemoryRegistrationStoreWithTTL(ttl time.Duration) *MemoryRegistrationStore {
	return &MemoryRegistrationStore{
		byChallenge: make(map[string]*RegistrationEntry),
		byUsername:  make(map[string][]string),
		ttl:         ttl,
	}
}

// Save persists a new entry.
func (s *MemoryRegistrationStore) Save(ctx context.Context, entry *RegistrationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byChallenge[entry.Challenge]; ok {
		return ErrChallengeAlreadyExists
	}

	s.byChallenge[entry.Challenge] = cloneEntry(entry)
	s.byUsername[entry.Username] = append(s.byUsername[entry.Username], entry.Challenge)
	return nil
}

// FindByChallenge retrieves the entry owning the challenge.
func (s *MemoryRegistrationStore) FindByChallenge(ctx context.Context, challenge string) (*RegistrationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.byChallenge[challenge]
	if !ok || s.expired(entry) {
		return nil, ErrChallengeNotFound
	}
	return cloneEntry(entry), nil
}

// FindByUsername retrieves all entries for a username.
func (s *MemoryRegistrationStore) FindByUsername(ctx context.Context, username string) ([]*RegistrationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenges := s.byUsername[username]
	entries := make([]*RegistrationEntry, 0, len(challenges))
	for _, challenge := range challenges {
		entry, ok := s.byChallenge[challenge]
		if !ok || s.expired(entry) {
			continue
		}
		entries = append(entries, cloneEntry(entry))
	}
	return entries, nil
}

// CompleteRegistration commits a PENDING to REGISTERED transition. The
// stored entry must still be PENDING; a racing second completion fails with
// ErrChallengeNotFound.
func (s *MemoryRegistrationStore) CompleteRegistration(ctx context.Context, entry *RegistrationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byChallenge[entry.Challenge]
	if !ok || current.Status != StatusPending || s.expired(current) {
		return ErrChallengeNotFound
	}

	s.byChallenge[entry.Challenge] = cloneEntry(entry)
	return nil
}

// Count returns the number of entries in the store.
func (s *MemoryRegistrationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byChallenge)
}

// Clear removes all entries from the store.
func (s *MemoryRegistrationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byChallenge = make(map[string]*RegistrationEntry)
	s.byUsername = make(map[string][]string)
}

// Cleanup removes expired PENDING entries and returns the count removed.
func (s *MemoryRegistrationStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for challenge, entry := range s.byChallenge {
		if s.expired(entry) {
			delete(s.byChallenge, challenge)
			s.removeUserChallenge(entry.Username, challenge)
			removed++
		}
	}
	return removed
}

func (s *MemoryRegistrationStore) expired(entry *RegistrationEntry) bool {
	return s.ttl > 0 &&
		entry.Status == StatusPending &&
		time.Since(entry.CreatedAt) > s.ttl
}

func (s *MemoryRegistrationStore) removeUserChallenge(username, challenge string) {
	challenges := s.byUsername[username]
	for i, c := range challenges {
		if c == challenge {
			s.byUsername[username] = append(challenges[:i], challenges[i+1:]...)
			return
		}
	}
}

func cloneEntry(entry *RegistrationEntry) *RegistrationEntry {
	clone := *entry
	if entry.PublicKeyMaterial != nil {
		clone.PublicKeyMaterial = append([]byte(nil), entry.PublicKeyMaterial...)
	}
	return &clone
}
