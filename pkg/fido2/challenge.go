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
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultChallengeSize is the number of random bytes in a challenge.
// 32 bytes gives 256 bits of entropy, well above the 128-bit minimum.
const DefaultChallengeSize = 32

// DefaultUserHandleSize is the number of random bytes in a user handle.
const DefaultUserHandleSize = 32

// RandomChallengeGenerator produces unguessable opaque tokens from the
// process-wide crypto/rand source. crypto/rand is safe for concurrent use,
// so a single generator serves all simultaneous ceremonies.
type RandomChallengeGenerator struct {
	size int
}

// NewRandomChallengeGenerator creates a generator producing tokens of the
// given byte size. Sizes below DefaultChallengeSize fall back to the default.
func NewRandomChallengeGenerator(size int) *RandomChallengeGenerator {
	if size < 16 {
		size = DefaultChallengeSize
	}
	return &RandomChallengeGenerator{size: size}
}

// NewChallenge returns a fresh random token encoded as URL-safe base64
// without padding. Collision probability is negligible at this entropy and
// is not explicitly checked.
func (g *RandomChallengeGenerator) NewChallenge() (string, error) {
	return randomToken(g.size)
}

// NewUserHandle returns a fresh random user handle encoded as URL-safe
// base64 without padding.
func NewUserHandle(size int) (string, error) {
	if size < DefaultUserHandleSize {
		size = DefaultUserHandleSize
	}
	return randomToken(size)
}

func randomToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random source: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
