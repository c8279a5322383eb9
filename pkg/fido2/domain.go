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

import "net/url"

// OriginDomainVerifier checks the origin asserted in client data against the
// domain recorded at challenge issuance.
type OriginDomainVerifier struct{}

// NewOriginDomainVerifier creates the default domain verifier.
func NewOriginDomainVerifier() *OriginDomainVerifier {
	return &OriginDomainVerifier{}
}

// Verify compares the stored domain against the asserted origin's host.
// The comparison is independent of whether the attestation itself would
// verify; a mismatch always fails with ErrDomainMismatch.
func (v *OriginDomainVerifier) Verify(storedDomain, assertedOrigin string) error {
	if storedDomain != "" && ExtractHost(assertedOrigin) == storedDomain {
		return nil
	}
	return NewError("verify domain", ErrDomainMismatch)
}

// ExtractHost returns the host component of a URL, without the port.
// Malformed or scheme-less values degrade gracefully to the raw string.
func ExtractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
