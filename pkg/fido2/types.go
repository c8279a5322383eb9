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

import "time"

// RegistrationStatus is the lifecycle state of a registration entry.
type RegistrationStatus string

const (
	// StatusPending marks an entry created by BeginRegistration that has not
	// yet been completed by a verified attestation response.
	StatusPending RegistrationStatus = "pending"

	// StatusRegistered marks an entry whose attestation response has been
	// verified. The transition happens exactly once and never reverts.
	StatusRegistered RegistrationStatus = "registered"
)

// AttestationConveyance is the client-requested policy for how much
// attestation detail the authenticator should reveal.
type AttestationConveyance string

const (
	ConveyanceNone     AttestationConveyance = "none"
	ConveyanceIndirect AttestationConveyance = "indirect"
	ConveyanceDirect   AttestationConveyance = "direct"
)

// CredentialTypePublicKey is the credential family registered by this server.
// CredentialTypeFIDO is a legacy alias that maps to the same algorithm set.
const (
	CredentialTypePublicKey = "public-key"
	CredentialTypeFIDO      = "FIDO"
)

// CeremonyCreateType is the client data type marker for a registration ceremony.
const CeremonyCreateType = "webauthn.create"

// RegistrationEntry is the unit of ceremony state. It is created PENDING by
// BeginRegistration and mutated exactly once by FinishRegistration on success.
//
// Challenge, Username, UserID and Domain are immutable after creation.
// The credential fields are empty until the entry is REGISTERED and are
// immutable afterwards.
type RegistrationEntry struct {
	// Challenge is the opaque unique token issued for this ceremony and the
	// primary correlation key. Exactly one entry owns a challenge.
	Challenge string `json:"challenge"`

	// Username is the account name the ceremony was started for.
	Username string `json:"username"`

	// UserID is the random user handle (32 bytes, base64url without padding).
	UserID string `json:"userId"`

	// Domain is the relying party id bound at challenge issuance. It is the
	// sole anti-phishing anchor and is never altered by verification.
	Domain string `json:"domain"`

	// Status is the entry lifecycle state.
	Status RegistrationStatus `json:"status"`

	// AttestationConveyance is the preference fixed at creation.
	AttestationConveyance AttestationConveyance `json:"attestationConveyancePreference"`

	// CredentialType is the fixed credential family string.
	CredentialType string `json:"credentialType,omitempty"`

	// CreationOptions is the serialized options object offered to the client,
	// retained so the exact offer can be audited or replayed.
	CreationOptions string `json:"creationOptions,omitempty"`

	// PublicKeyID is the credential identifier, set on successful verification.
	PublicKeyID string `json:"publicKeyId,omitempty"`

	// PublicKeyMaterial is the raw public key point returned by the verifier.
	PublicKeyMaterial []byte `json:"publicKeyMaterial,omitempty"`

	// SignatureAlgorithm is the COSE algorithm identifier of the credential key.
	SignatureAlgorithm int `json:"signatureAlgorithm,omitempty"`

	// SignatureCounter is the authenticator's initial signature counter.
	SignatureCounter uint32 `json:"signatureCounter,omitempty"`

	// RawAttestationResponse is the verbatim client response payload,
	// retained for audit.
	RawAttestationResponse string `json:"rawAttestationResponse,omitempty"`

	// CreatedAt is when the entry was created by BeginRegistration.
	CreatedAt time.Time `json:"createdAt"`

	// RegisteredAt is when the entry transitioned to REGISTERED.
	RegisteredAt time.Time `json:"registeredAt,omitempty"`
}

// CredentialData is the material returned by the attestation verifier for a
// successfully verified response.
type CredentialData struct {
	// CredentialID is the verifier-extracted credential identifier, base64url
	// without padding. May be empty; the orchestrator then falls back to the
	// client-asserted id.
	CredentialID string

	// PublicKey is the raw public key point (uncompressed EC point for EC2
	// keys, raw key bytes otherwise).
	PublicKey []byte

	// SignatureAlgorithm is the COSE algorithm identifier.
	SignatureAlgorithm int

	// SignCount is the authenticator's initial signature counter.
	SignCount uint32
}

// PublicKeyCredentialDescriptor identifies a previously registered credential,
// used for exclusion lists.
type PublicKeyCredentialDescriptor struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}
