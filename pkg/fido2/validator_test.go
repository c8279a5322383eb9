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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadValidator_VerifyOptionsRequest(t *testing.T) {
	var v PayloadValidator

	tests := []struct {
		name    string
		req     *BeginRegistrationRequest
		wantErr error
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "missing username",
			req:     &BeginRegistrationRequest{DisplayName: "Test User"},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "missing display name",
			req:     &BeginRegistrationRequest{Username: "testuser"},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "valid",
			req:  &BeginRegistrationRequest{Username: "testuser", DisplayName: "Test User"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.VerifyOptionsRequest(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPayloadValidator_VerifyAttestationConveyance(t *testing.T) {
	var v PayloadValidator

	tests := []struct {
		name    string
		value   string
		want    AttestationConveyance
		wantErr error
	}{
		{name: "empty defaults to none", value: "", want: ConveyanceNone},
		{name: "none", value: "none", want: ConveyanceNone},
		{name: "indirect", value: "indirect", want: ConveyanceIndirect},
		{name: "direct", value: "direct", want: ConveyanceDirect},
		{name: "unknown rejected", value: "enterprise", wantErr: ErrUnsupportedConveyance},
		{name: "case sensitive", value: "Direct", wantErr: ErrUnsupportedConveyance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.VerifyAttestationConveyance(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayloadValidator_VerifyCredentialType(t *testing.T) {
	var v PayloadValidator

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "empty defaults to public-key", value: "", want: CredentialTypePublicKey},
		{name: "public-key", value: "public-key", want: CredentialTypePublicKey},
		{name: "legacy FIDO family", value: "FIDO", want: CredentialTypeFIDO},
		{name: "unknown rejected", value: "u2f", wantErr: ErrUnsupportedCredentialType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.VerifyCredentialType(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayloadValidator_VerifyResultRequest(t *testing.T) {
	var v PayloadValidator

	validResponse, err := json.Marshal(AttestationResponse{
		ClientDataJSON:    "Y2xpZW50LWRhdGE",
		AttestationObject: "YXR0LW9iag",
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *FinishRegistrationRequest
		wantErr bool
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: true,
		},
		{
			name:    "missing type",
			req:     &FinishRegistrationRequest{ID: "abc", Response: validResponse},
			wantErr: true,
		},
		{
			name:    "missing id",
			req:     &FinishRegistrationRequest{Type: "public-key", Response: validResponse},
			wantErr: true,
		},
		{
			name:    "missing response",
			req:     &FinishRegistrationRequest{Type: "public-key", ID: "abc"},
			wantErr: true,
		},
		{
			name:    "response is not an object",
			req:     &FinishRegistrationRequest{Type: "public-key", ID: "abc", Response: json.RawMessage(`"text"`)},
			wantErr: true,
		},
		{
			name: "missing clientDataJSON",
			req: &FinishRegistrationRequest{
				Type: "public-key", ID: "abc",
				Response: json.RawMessage(`{"attestationObject":"YXR0"}`),
			},
			wantErr: true,
		},
		{
			name: "missing attestationObject",
			req: &FinishRegistrationRequest{
				Type: "public-key", ID: "abc",
				Response: json.RawMessage(`{"clientDataJSON":"Y2Q"}`),
			},
			wantErr: true,
		},
		{
			name: "valid",
			req:  &FinishRegistrationRequest{Type: "public-key", ID: "abc", Response: validResponse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := v.VerifyResultRequest(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Y2xpZW50LWRhdGE", resp.ClientDataJSON)
			assert.Equal(t, "YXR0LW9iag", resp.AttestationObject)
		})
	}
}

func TestPayloadValidator_DecodeClientData(t *testing.T) {
	var v PayloadValidator

	encode := func(cd ClientData) string {
		raw, err := json.Marshal(cd)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(raw)
	}

	t.Run("valid", func(t *testing.T) {
		cd, err := v.DecodeClientData(encode(ClientData{
			Type:      CeremonyCreateType,
			Challenge: "Y2hhbGxlbmdl",
			Origin:    "https://example.com",
		}))
		require.NoError(t, err)
		assert.Equal(t, CeremonyCreateType, cd.Type)
		assert.Equal(t, "Y2hhbGxlbmdl", cd.Challenge)
		assert.Equal(t, "https://example.com", cd.Origin)
	})

	t.Run("padded base64url accepted", func(t *testing.T) {
		raw, err := json.Marshal(ClientData{
			Type:      CeremonyCreateType,
			Challenge: "Y2hhbGxlbmdl",
			Origin:    "https://example.com",
		})
		require.NoError(t, err)
		_, err = v.DecodeClientData(base64.URLEncoding.EncodeToString(raw))
		assert.NoError(t, err)
	})

	t.Run("invalid base64 aborts", func(t *testing.T) {
		_, err := v.DecodeClientData("!!!not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("invalid json aborts", func(t *testing.T) {
		_, err := v.DecodeClientData(base64.RawURLEncoding.EncodeToString([]byte("not-json")))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("missing challenge aborts", func(t *testing.T) {
		_, err := v.DecodeClientData(encode(ClientData{
			Type:   CeremonyCreateType,
			Origin: "https://example.com",
		}))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("missing origin aborts", func(t *testing.T) {
		_, err := v.DecodeClientData(encode(ClientData{
			Type:      CeremonyCreateType,
			Challenge: "Y2hhbGxlbmdl",
		}))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestPayloadValidator_VerifyCreateCeremony(t *testing.T) {
	var v PayloadValidator

	assert.NoError(t, v.VerifyCreateCeremony(&ClientData{Type: "webauthn.create"}))

	err := v.VerifyCreateCeremony(&ClientData{Type: "webauthn.get"})
	assert.ErrorIs(t, err, ErrInvalidCeremonyType)

	err = v.VerifyCreateCeremony(&ClientData{Type: ""})
	assert.ErrorIs(t, err, ErrInvalidCeremonyType)
}

func TestPayloadValidator_ReencodeChallenge(t *testing.T) {
	var v PayloadValidator

	raw := []byte("some-challenge-bytes")
	unpadded := base64.RawURLEncoding.EncodeToString(raw)
	padded := base64.URLEncoding.EncodeToString(raw)

	got, err := v.ReencodeChallenge(unpadded)
	require.NoError(t, err)
	assert.Equal(t, unpadded, got)

	// Padded input normalizes to the unpadded issuance form
	got, err = v.ReencodeChallenge(padded)
	require.NoError(t, err)
	assert.Equal(t, unpadded, got)

	_, err = v.ReencodeChallenge("!!!")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDecodeBase64URL(t *testing.T) {
	raw := []byte{0xfa, 0xce, 0xb0, 0x0c}

	got, err := DecodeBase64URL(base64.RawURLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeBase64URL(base64.URLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = DecodeBase64URL("%%%")
	assert.Error(t, err)
}
