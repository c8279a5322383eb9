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

import "context"

// RegistrationStore is the persistence boundary for registration entries.
// The challenge is a unique key: at most one entry owns a challenge, so
// lookup is deterministic by construction.
type RegistrationStore interface {
	// Save persists a new entry. Returns ErrChallengeAlreadyExists if the
	// challenge is already owned by another entry.
	Save(ctx context.Context, entry *RegistrationEntry) error

	// FindByChallenge retrieves the entry owning the challenge.
	// Returns ErrChallengeNotFound if no entry matches.
	FindByChallenge(ctx context.Context, challenge string) (*RegistrationEntry, error)

	// FindByUsername retrieves all entries for a username, in any status.
	// Returns an empty slice if the user has no entries.
	FindByUsername(ctx context.Context, username string) ([]*RegistrationEntry, error)

	// CompleteRegistration commits a PENDING to REGISTERED transition.
	// The update is conditional: it succeeds only while the stored entry is
	// still PENDING, so at most one of two racing callers observes success.
	// The loser receives ErrChallengeNotFound.
	CompleteRegistration(ctx context.Context, entry *RegistrationEntry) error
}

// AttestationVerifier is the cryptographic boundary. It verifies a raw
// attestation response against the pending entry and returns the credential
// material. Attestation-format detail is opaque to the orchestrator.
type AttestationVerifier interface {
	Verify(ctx context.Context, request *FinishRegistrationRequest, entry *RegistrationEntry) (*CredentialData, error)
}

// DomainVerifier checks a response origin against the domain recorded at
// challenge time.
type DomainVerifier interface {
	Verify(storedDomain, assertedOrigin string) error
}

// ChallengeGenerator produces unique, unguessable opaque tokens. It must be
// safe for concurrent use across simultaneous ceremonies.
type ChallengeGenerator interface {
	NewChallenge() (string, error)
}
