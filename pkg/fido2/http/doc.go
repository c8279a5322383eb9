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

// Package http provides composable HTTP handlers for the registration
// ceremony that can be mounted on any router.
//
// The endpoint names follow the FIDO2 server convention:
//
//	POST /attestation/options  - begin a registration ceremony
//	POST /attestation/result   - complete a registration ceremony
//
// Failures are reported with a "failed" status and a populated errorMessage,
// alongside an appropriate HTTP status code.
package http
