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
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/go-webauthn/webauthn/webauthn"
)

// WebauthnAttestationVerifier verifies attestation responses with the
// go-webauthn library. Challenge correlation and origin binding are the
// orchestrator's responsibility and happen before this verifier runs; the
// asserted origin is therefore passed through as the allowed origin and only
// the cryptographic and structural checks are of interest here.
type WebauthnAttestationVerifier struct {
	rpName string
}

// NewWebauthnAttestationVerifier creates a verifier for the given relying
// party display name.
func NewWebauthnAttestationVerifier(rpName string) *WebauthnAttestationVerifier {
	return &WebauthnAttestationVerifier{rpName: rpName}
}

// Verify parses and verifies the raw attestation response against the
// matched registration entry and returns the credential material.
func (v *WebauthnAttestationVerifier) Verify(ctx context.Context, request *FinishRegistrationRequest, entry *RegistrationEntry) (*CredentialData, error) {
	var attResp AttestationResponse
	if err := json.Unmarshal(request.Response, &attResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	clientDataJSON, err := DecodeBase64URL(attResp.ClientDataJSON)
	if err != nil {
		return nil, fmt.Errorf("decode clientDataJSON: %w", err)
	}
	attestationObject, err := DecodeBase64URL(attResp.AttestationObject)
	if err != nil {
		return nil, fmt.Errorf("decode attestationObject: %w", err)
	}
	rawID, err := DecodeBase64URL(request.ID)
	if err != nil {
		return nil, fmt.Errorf("decode id: %w", err)
	}

	ccr := protocol.CredentialCreationResponse{
		PublicKeyCredential: protocol.PublicKeyCredential{
			Credential: protocol.Credential{
				ID:   base64.RawURLEncoding.EncodeToString(rawID),
				Type: request.Type,
			},
			RawID: rawID,
		},
		AttestationResponse: protocol.AuthenticatorAttestationResponse{
			AuthenticatorResponse: protocol.AuthenticatorResponse{
				ClientDataJSON: clientDataJSON,
			},
			AttestationObject: attestationObject,
		},
	}
	parsed, err := ccr.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse attestation response: %w", err)
	}

	wa, err := webauthn.New(&webauthn.Config{
		RPID:          entry.Domain,
		RPDisplayName: v.rpName,
		RPOrigins:     []string{parsed.Response.CollectedClientData.Origin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn config: %w", err)
	}

	userID, err := DecodeBase64URL(entry.UserID)
	if err != nil {
		return nil, fmt.Errorf("decode user handle: %w", err)
	}
	session := webauthn.SessionData{
		Challenge: entry.Challenge,
		UserID:    userID,
	}

	credential, err := wa.CreateCredential(&entryUser{entry: entry, id: userID}, session, parsed)
	if err != nil {
		return nil, err
	}

	alg, publicKey, err := coseAlgorithmAndPoint(credential.PublicKey)
	if err != nil {
		return nil, err
	}

	return &CredentialData{
		CredentialID:       base64.RawURLEncoding.EncodeToString(credential.ID),
		PublicKey:          publicKey,
		SignatureAlgorithm: alg,
		SignCount:          credential.Authenticator.SignCount,
	}, nil
}

// coseAlgorithmAndPoint extracts the signature algorithm and raw key
// material from a COSE-encoded public key. EC2 keys are flattened to the
// uncompressed point form.
func coseAlgorithmAndPoint(coseKey []byte) (int, []byte, error) {
	parsed, err := webauthncose.ParsePublicKey(coseKey)
	if err != nil {
		return 0, nil, fmt.Errorf("parse public key: %w", err)
	}

	switch key := parsed.(type) {
	case webauthncose.EC2PublicKeyData:
		point := make([]byte, 0, 1+len(key.XCoord)+len(key.YCoord))
		point = append(point, 0x04)
		point = append(point, key.XCoord...)
		point = append(point, key.YCoord...)
		return int(key.Algorithm), point, nil
	case webauthncose.OKPPublicKeyData:
		return int(key.Algorithm), key.XCoord, nil
	case webauthncose.RSAPublicKeyData:
		return int(key.Algorithm), key.Modulus, nil
	default:
		return 0, nil, fmt.Errorf("unsupported key type %T", parsed)
	}
}

// entryUser adapts a registration entry to the go-webauthn user contract.
type entryUser struct {
	entry *RegistrationEntry
	id    []byte
}

func (u *entryUser) WebAuthnID() []byte {
	return u.id
}

func (u *entryUser) WebAuthnName() string {
	return u.entry.Username
}

func (u *entryUser) WebAuthnDisplayName() string {
	return u.entry.Username
}

func (u *entryUser) WebAuthnCredentials() []webauthn.Credential {
	return nil
}
