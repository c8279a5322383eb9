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
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PayloadValidator performs structural and encoding checks on inbound
// ceremony payloads. Every field access on client-supplied data goes through
// a typed, fallible parse step here; nothing downstream touches raw JSON.
type PayloadValidator struct{}

// VerifyOptionsRequest checks the required fields of a BeginRegistration
// request.
func (PayloadValidator) VerifyOptionsRequest(req *BeginRegistrationRequest) error {
	if req == nil {
		return NewError("verify options", ErrInvalidRequest)
	}
	if req.Username == "" {
		return NewError("username is required", ErrInvalidRequest)
	}
	if req.DisplayName == "" {
		return NewError("displayName is required", ErrInvalidRequest)
	}
	return nil
}

// VerifyAttestationConveyance resolves the conveyance preference against the
// enumerated set. A missing value defaults to none; unknown values are
// rejected, never silently defaulted.
func (PayloadValidator) VerifyAttestationConveyance(value string) (AttestationConveyance, error) {
	switch AttestationConveyance(value) {
	case "":
		return ConveyanceNone, nil
	case ConveyanceNone, ConveyanceIndirect, ConveyanceDirect:
		return AttestationConveyance(value), nil
	default:
		return "", NewError(fmt.Sprintf("attestation %q", value), ErrUnsupportedConveyance)
	}
}

// VerifyCredentialType resolves the credential family. The legacy "FIDO"
// family is accepted and maps to the same signature algorithm set.
func (PayloadValidator) VerifyCredentialType(value string) (string, error) {
	switch value {
	case "":
		return CredentialTypePublicKey, nil
	case CredentialTypePublicKey, CredentialTypeFIDO:
		return value, nil
	default:
		return "", NewError(fmt.Sprintf("credentialType %q", value), ErrUnsupportedCredentialType)
	}
}

// VerifyResultRequest checks the envelope of a FinishRegistration request and
// returns the typed attestation response.
func (PayloadValidator) VerifyResultRequest(req *FinishRegistrationRequest) (*AttestationResponse, error) {
	if req == nil || req.Type == "" {
		return nil, NewError("type is required", ErrInvalidRequest)
	}
	if req.ID == "" {
		return nil, NewError("id is required", ErrInvalidRequest)
	}
	if len(req.Response) == 0 {
		return nil, NewError("response is required", ErrInvalidRequest)
	}
	var resp AttestationResponse
	if err := json.Unmarshal(req.Response, &resp); err != nil {
		return nil, NewError("response is not an object", ErrInvalidRequest)
	}
	if resp.ClientDataJSON == "" {
		return nil, NewError("response.clientDataJSON is required", ErrInvalidRequest)
	}
	if resp.AttestationObject == "" {
		return nil, NewError("response.attestationObject is required", ErrInvalidRequest)
	}
	return &resp, nil
}

// VerifyBase64URL decodes a base64url value, accepting both padded and
// unpadded forms.
func (PayloadValidator) VerifyBase64URL(value string) ([]byte, error) {
	raw, err := DecodeBase64URL(value)
	if err != nil {
		return nil, NewError("value is not base64url", ErrInvalidRequest)
	}
	return raw, nil
}

// DecodeClientData decodes the base64url clientDataJSON into its structured
// form. A decode failure aborts the ceremony; it is never ignored.
func (PayloadValidator) DecodeClientData(encoded string) (*ClientData, error) {
	raw, err := DecodeBase64URL(encoded)
	if err != nil {
		return nil, NewError("clientDataJSON is not base64url", ErrInvalidRequest)
	}
	var cd ClientData
	if err := json.Unmarshal(raw, &cd); err != nil {
		return nil, NewError("can't parse client data", ErrInvalidRequest)
	}
	if cd.Challenge == "" || cd.Origin == "" {
		return nil, NewError("client data is missing challenge or origin", ErrInvalidRequest)
	}
	return &cd, nil
}

// VerifyCreateCeremony checks the client data type against the registration
// ceremony marker.
func (PayloadValidator) VerifyCreateCeremony(cd *ClientData) error {
	if cd.Type != CeremonyCreateType {
		return NewError(fmt.Sprintf("client data type %q", cd.Type), ErrInvalidCeremonyType)
	}
	return nil
}

// ReencodeChallenge normalizes a client-asserted challenge into the canonical
// representation used at issuance (base64url without padding), so store
// lookups compare like with like.
func (PayloadValidator) ReencodeChallenge(challenge string) (string, error) {
	raw, err := DecodeBase64URL(challenge)
	if err != nil {
		return "", NewError("challenge is not base64url", ErrInvalidRequest)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeBase64URL decodes base64url input with or without padding.
func DecodeBase64URL(value string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(value); err == nil {
		return raw, nil
	}
	return base64.URLEncoding.DecodeString(value)
}
