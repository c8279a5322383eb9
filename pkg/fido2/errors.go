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
	"errors"
	"fmt"
)

// Sentinel errors for registration ceremony operations.
var (
	// ErrInvalidRequest is returned when the request payload is malformed:
	// a required field is missing, a value is not valid base64url, or the
	// client data JSON cannot be decoded.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCeremonyType is returned when the client data type does not
	// match the registration ceremony marker ("webauthn.create").
	ErrInvalidCeremonyType = errors.New("client data type is not webauthn.create")

	// ErrChallengeNotFound is returned when no pending registration matches
	// the challenge asserted by the client. This covers unknown, expired
	// and already-consumed challenges uniformly.
	ErrChallengeNotFound = errors.New("no registration matches the challenge")

	// ErrChallengeAlreadyExists is returned when saving a new entry whose
	// challenge is already owned by another entry.
	ErrChallengeAlreadyExists = errors.New("challenge already exists")

	// ErrDomainMismatch is returned when the origin asserted by the client
	// does not match the domain bound at challenge issuance.
	ErrDomainMismatch = errors.New("origin does not match registration domain")

	// ErrAttestationRejected is returned when the attestation verifier
	// rejects the cryptographic proof. Verifier-internal detail is not
	// exposed beyond this generic failure.
	ErrAttestationRejected = errors.New("attestation verification failed")

	// ErrUnsupportedConveyance is returned for an attestation conveyance
	// preference outside {none, indirect, direct}.
	ErrUnsupportedConveyance = errors.New("unsupported attestation conveyance preference")

	// ErrUnsupportedCredentialType is returned for an unknown credential type.
	ErrUnsupportedCredentialType = errors.New("unsupported credential type")

	// ErrNotConfigured is returned when the service is not properly configured.
	ErrNotConfigured = errors.New("fido2 service not configured")
)

// Fido2Error wraps an error with the operation that failed.
type Fido2Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

// Error returns the error message.
func (e *Fido2Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Fido2Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches.
func (e *Fido2Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Fido2Error with the given operation and error.
func NewError(op string, err error) error {
	return &Fido2Error{
		Op:  op,
		Err: err,
	}
}

// WrapError wraps an error with an operation name if it's not nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(op, err)
}

// IsInvalidRequest returns true if the error indicates a malformed request.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsChallengeNotFound returns true if the error indicates an unknown challenge.
func IsChallengeNotFound(err error) bool {
	return errors.Is(err, ErrChallengeNotFound)
}

// IsDomainMismatch returns true if the error indicates an origin binding failure.
func IsDomainMismatch(err error) bool {
	return errors.Is(err, ErrDomainMismatch)
}

// IsAttestationRejected returns true if the error indicates the verifier
// rejected the attestation.
func IsAttestationRejected(err error) bool {
	return errors.Is(err, ErrAttestationRejected)
}
