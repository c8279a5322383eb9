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
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/descope/virtualwebauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationService(t *testing.T) (*Service, *MemoryRegistrationStore) {
	t.Helper()
	store := NewMemoryRegistrationStore()
	service, err := NewService(ServiceParams{
		Config: &Config{
			RPName: "Example Corp",
			Issuer: "https://example.com",
		},
		Store:    store,
		Verifier: NewWebauthnAttestationVerifier("Example Corp"),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return service, store
}

// TestIntegration_FullRegistrationCeremony runs the complete registration
// ceremony against the real attestation verifier using a virtual
// authenticator.
func TestIntegration_FullRegistrationCeremony(t *testing.T) {
	ctx := context.Background()
	service, store := newIntegrationService(t)

	// Set up virtual authenticator
	rp := virtualwebauthn.RelyingParty{
		Name:   "Example Corp",
		ID:     "example.com",
		Origin: "https://example.com",
	}
	authenticator := virtualwebauthn.NewAuthenticator()
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	// Step 1: Begin registration
	options, err := service.BeginRegistration(ctx, &BeginRegistrationRequest{
		Username:    "testuser@example.com",
		DisplayName: "Test User",
	})
	require.NoError(t, err)
	require.NotEmpty(t, options.Challenge)
	assert.Equal(t, "example.com", options.RelyingParty.ID)
	assert.Equal(t, "Example Corp", options.RelyingParty.Name)

	// Step 2: Create attestation response using virtual authenticator
	optionsJSON, err := json.Marshal(options)
	require.NoError(t, err)

	parsedOptions, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	require.NoError(t, err)

	attestationResponse := virtualwebauthn.CreateAttestationResponse(rp, authenticator, credential, *parsedOptions)

	// Step 3: Finish registration with the authenticator's response
	var req FinishRegistrationRequest
	require.NoError(t, json.Unmarshal([]byte(attestationResponse), &req))

	result, err := service.FinishRegistration(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Empty(t, result.ErrorMessage)

	// The entry transitioned to REGISTERED with the credential material
	entry, err := store.FindByChallenge(ctx, options.Challenge)
	require.NoError(t, err)
	assert.Equal(t, StatusRegistered, entry.Status)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(credential.ID), entry.PublicKeyID)
	assert.Equal(t, CredentialTypePublicKey, entry.CredentialType)
	assert.Equal(t, -7, entry.SignatureAlgorithm)
	assert.NotEmpty(t, entry.PublicKeyMaterial)
	assert.NotEmpty(t, entry.RawAttestationResponse)
	assert.False(t, entry.RegisteredAt.IsZero())

	// The challenge is consumed
	_, err = service.FinishRegistration(ctx, &req)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

// TestIntegration_OriginMismatch exercises domain binding with a response
// minted for a different origin.
func TestIntegration_OriginMismatch(t *testing.T) {
	ctx := context.Background()
	service, store := newIntegrationService(t)

	// Authenticator operating on a different origin than the ceremony domain
	phishingRP := virtualwebauthn.RelyingParty{
		Name:   "Example Corp",
		ID:     "example.com",
		Origin: "https://evil.example.net",
	}
	authenticator := virtualwebauthn.NewAuthenticator()
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	options, err := service.BeginRegistration(ctx, &BeginRegistrationRequest{
		Username:    "testuser@example.com",
		DisplayName: "Test User",
	})
	require.NoError(t, err)

	optionsJSON, err := json.Marshal(options)
	require.NoError(t, err)
	parsedOptions, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	require.NoError(t, err)

	attestationResponse := virtualwebauthn.CreateAttestationResponse(phishingRP, authenticator, credential, *parsedOptions)

	var req FinishRegistrationRequest
	require.NoError(t, json.Unmarshal([]byte(attestationResponse), &req))

	_, err = service.FinishRegistration(ctx, &req)
	assert.ErrorIs(t, err, ErrDomainMismatch)

	// Ceremony remains open
	entry, err := store.FindByChallenge(ctx, options.Challenge)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, entry.Status)
}

// TestIntegration_TamperedChallenge exercises correlation with a response
// asserting a challenge that was never issued.
func TestIntegration_TamperedChallenge(t *testing.T) {
	ctx := context.Background()
	service, _ := newIntegrationService(t)

	rp := virtualwebauthn.RelyingParty{
		Name:   "Example Corp",
		ID:     "example.com",
		Origin: "https://example.com",
	}
	authenticator := virtualwebauthn.NewAuthenticator()
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	options, err := service.BeginRegistration(ctx, &BeginRegistrationRequest{
		Username:    "testuser@example.com",
		DisplayName: "Test User",
	})
	require.NoError(t, err)

	// Swap the issued challenge for one the server never minted
	options.Challenge = base64.RawURLEncoding.EncodeToString([]byte("forged-challenge-value-123456789"))
	optionsJSON, err := json.Marshal(options)
	require.NoError(t, err)
	parsedOptions, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	require.NoError(t, err)

	attestationResponse := virtualwebauthn.CreateAttestationResponse(rp, authenticator, credential, *parsedOptions)

	var req FinishRegistrationRequest
	require.NoError(t, json.Unmarshal([]byte(attestationResponse), &req))

	_, err = service.FinishRegistration(ctx, &req)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

// TestIntegration_ExcludeListAfterRegistration verifies that a completed
// registration shows up in the next ceremony's exclusion list.
func TestIntegration_ExcludeListAfterRegistration(t *testing.T) {
	ctx := context.Background()
	service, _ := newIntegrationService(t)

	rp := virtualwebauthn.RelyingParty{
		Name:   "Example Corp",
		ID:     "example.com",
		Origin: "https://example.com",
	}
	authenticator := virtualwebauthn.NewAuthenticator()
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	options, err := service.BeginRegistration(ctx, &BeginRegistrationRequest{
		Username:    "testuser@example.com",
		DisplayName: "Test User",
	})
	require.NoError(t, err)

	optionsJSON, err := json.Marshal(options)
	require.NoError(t, err)
	parsedOptions, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	require.NoError(t, err)

	attestationResponse := virtualwebauthn.CreateAttestationResponse(rp, authenticator, credential, *parsedOptions)

	var req FinishRegistrationRequest
	require.NoError(t, json.Unmarshal([]byte(attestationResponse), &req))

	_, err = service.FinishRegistration(ctx, &req)
	require.NoError(t, err)
	authenticator.AddCredential(credential)

	// The registered credential is excluded from the next ceremony
	next, err := service.BeginRegistration(ctx, &BeginRegistrationRequest{
		Username:    "testuser@example.com",
		DisplayName: "Test User",
	})
	require.NoError(t, err)
	require.Len(t, next.ExcludeCredentials, 1)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(credential.ID), next.ExcludeCredentials[0].ID)
	assert.Equal(t, CredentialTypePublicKey, next.ExcludeCredentials[0].Type)
}
