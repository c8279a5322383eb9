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

// Package fido2 implements the server side of the FIDO2/WebAuthn
// registration ceremony: challenge issuance, challenge correlation, origin
// binding, and the registration entry state machine.
//
// The package separates the ceremony orchestration from its collaborators:
//
//  1. Service - the ceremony orchestrator (BeginRegistration, FinishRegistration)
//  2. RegistrationStore - pluggable persistence keyed by challenge
//  3. AttestationVerifier - the cryptographic boundary, backed by go-webauthn
//  4. DomainVerifier / ChallengeGenerator - origin binding and token issuance
//
// # Usage
//
// Basic usage with in-memory storage (for development):
//
//	svc, err := fido2.NewService(fido2.ServiceParams{
//	    Config: &fido2.Config{
//	        RPName: "Example Corp",
//	        Issuer: "https://example.com",
//	    },
//	    Store:    fido2.NewMemoryRegistrationStore(),
//	    Verifier: fido2.NewWebauthnAttestationVerifier("Example Corp"),
//	})
//
// For production, implement RegistrationStore with your database. The store
// must treat the challenge as a unique key and make the PENDING to
// REGISTERED transition conditional, so two racing completions cannot both
// succeed.
//
// # Ceremony flow
//
// BeginRegistration creates a PENDING entry keyed by a fresh challenge and
// returns the credential creation options to offer the client.
// FinishRegistration resolves the client's response to that entry via the
// challenge embedded in the client data, verifies origin binding before
// cryptographic acceptance, delegates to the AttestationVerifier, and
// commits the entry as REGISTERED exactly once.
//
// # WebAuthn Specification Compliance
//
// This implementation follows the W3C Web Authentication specification:
//   - https://www.w3.org/TR/webauthn-2/
package fido2
