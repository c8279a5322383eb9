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

import "encoding/json"

// StatusOK and StatusFailed are the caller-visible ceremony result markers.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// BeginRegistrationRequest starts a registration ceremony.
type BeginRegistrationRequest struct {
	// Username is the account name (required).
	Username string `json:"username"`

	// DisplayName is the human-readable account name (required).
	DisplayName string `json:"displayName"`

	// DocumentDomain optionally overrides the relying party's configured
	// issuer identity for domain binding.
	DocumentDomain string `json:"documentDomain,omitempty"`

	// AuthenticatorSelection is an opaque object echoed back verbatim in
	// the ceremony options.
	AuthenticatorSelection json.RawMessage `json:"authenticatorSelection,omitempty"`

	// Attestation is the conveyance preference (optional, defaults to none).
	Attestation string `json:"attestation,omitempty"`

	// CredentialType is the credential family (optional, defaults to
	// "public-key").
	CredentialType string `json:"credentialType,omitempty"`
}

// RelyingPartyEntity describes the relying party in ceremony options.
type RelyingPartyEntity struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// UserEntity describes the user in ceremony options.
type UserEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// PublicKeyCredentialParameter pairs a credential type with a COSE signature
// algorithm identifier.
type PublicKeyCredentialParameter struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

// CredentialCreationOptions is the ceremony offer returned to the client by
// BeginRegistration.
type CredentialCreationOptions struct {
	Challenge              string                          `json:"challenge"`
	RelyingParty           RelyingPartyEntity              `json:"rp"`
	User                   UserEntity                      `json:"user"`
	Attestation            AttestationConveyance           `json:"attestation"`
	PubKeyCredParams       []PublicKeyCredentialParameter  `json:"pubKeyCredParams"`
	AuthenticatorSelection json.RawMessage                 `json:"authenticatorSelection,omitempty"`
	ExcludeCredentials     []PublicKeyCredentialDescriptor `json:"excludeCredentials"`
	Status                 string                          `json:"status"`
	ErrorMessage           string                          `json:"errorMessage"`
}

// FinishRegistrationRequest carries the authenticator's attestation response.
// Response is kept raw so the verbatim payload can be retained for audit and
// handed untouched to the attestation verifier.
type FinishRegistrationRequest struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Response json.RawMessage `json:"response"`
}

// AttestationResponse is the typed view of FinishRegistrationRequest.Response.
type AttestationResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AttestationObject string `json:"attestationObject"`
}

// FinishRegistrationResponse reports the ceremony outcome.
type FinishRegistrationResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// ClientData is the decoded clientDataJSON asserted by the client.
type ClientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}
