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
	"log/slog"
	"time"
)

// Service orchestrates the registration ceremony: challenge issuance and
// correlation, domain binding, and the registration entry state machine.
// It is stateless between calls; all durable state lives in the store.
type Service struct {
	config     *Config
	store      RegistrationStore
	verifier   AttestationVerifier
	domains    DomainVerifier
	challenges ChallengeGenerator
	validator  PayloadValidator
	logger     *slog.Logger
	configured bool
}

// ServiceParams contains dependencies for creating a ceremony service.
type ServiceParams struct {
	// Config is the relying party configuration (required).
	Config *Config

	// Store is the registration persistence layer (required).
	Store RegistrationStore

	// Verifier is the cryptographic attestation verifier (required).
	Verifier AttestationVerifier

	// DomainVerifier checks origin binding. Defaults to OriginDomainVerifier.
	DomainVerifier DomainVerifier

	// ChallengeGenerator produces ceremony challenges. Defaults to a
	// RandomChallengeGenerator sized from Config.
	ChallengeGenerator ChallengeGenerator

	// Logger is an optional structured logger. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewService creates a new ceremony service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("registration store is required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("attestation verifier is required")
	}

	params.Config.SetDefaults()
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	domains := params.DomainVerifier
	if domains == nil {
		domains = NewOriginDomainVerifier()
	}
	challenges := params.ChallengeGenerator
	if challenges == nil {
		challenges = NewRandomChallengeGenerator(params.Config.ChallengeSize)
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		config:     params.Config,
		store:      params.Store,
		verifier:   params.Verifier,
		domains:    domains,
		challenges: challenges,
		logger:     logger,
		configured: true,
	}, nil
}

// BeginRegistration starts a registration ceremony. It creates a PENDING
// entry keyed by a fresh challenge and returns the ceremony options to offer
// the client. Concurrent calls for the same username are independent and
// never conflict.
func (s *Service) BeginRegistration(ctx context.Context, req *BeginRegistrationRequest) (*CredentialCreationOptions, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	if err := s.validator.VerifyOptionsRequest(req); err != nil {
		return nil, err
	}

	// Resolve the domain to bind the ceremony to. Malformed URLs degrade
	// gracefully to the raw string.
	documentDomain := req.DocumentDomain
	if documentDomain == "" {
		documentDomain = s.config.Issuer
	}
	host := ExtractHost(documentDomain)

	conveyance, err := s.validator.VerifyAttestationConveyance(req.Attestation)
	if err != nil {
		return nil, err
	}

	credentialType, err := s.validator.VerifyCredentialType(req.CredentialType)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challenges.NewChallenge()
	if err != nil {
		return nil, WrapError("generate challenge", err)
	}
	userID, err := NewUserHandle(s.config.UserHandleSize)
	if err != nil {
		return nil, WrapError("generate user handle", err)
	}

	excludeCredentials, err := s.excludeCredentialsFor(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	options := &CredentialCreationOptions{
		Challenge: challenge,
		RelyingParty: RelyingPartyEntity{
			Name: s.config.RPName,
			ID:   host,
		},
		User: UserEntity{
			ID:          userID,
			Name:        req.Username,
			DisplayName: req.DisplayName,
		},
		Attestation:            conveyance,
		PubKeyCredParams:       credentialParametersFor(credentialType),
		AuthenticatorSelection: req.AuthenticatorSelection,
		ExcludeCredentials:     excludeCredentials,
		Status:                 StatusOK,
		ErrorMessage:           "",
	}

	serialized, err := json.Marshal(options)
	if err != nil {
		return nil, WrapError("serialize options", err)
	}

	entry := &RegistrationEntry{
		Challenge:             challenge,
		Username:              req.Username,
		UserID:                userID,
		Domain:                host,
		Status:                StatusPending,
		AttestationConveyance: conveyance,
		CreationOptions:       string(serialized),
		CreatedAt:             time.Now().UTC(),
	}
	if err := s.store.Save(ctx, entry); err != nil {
		return nil, WrapError("save registration", err)
	}

	s.logger.Info("registration ceremony started",
		"username", req.Username,
		"domain", host,
		"attestation", conveyance)

	return options, nil
}

// FinishRegistration completes a registration ceremony. It correlates the
// response to the PENDING entry through the challenge embedded in the client
// data, enforces domain binding, delegates cryptographic verification, and
// transitions the entry to REGISTERED. Failure at any step leaves the entry
// unchanged.
func (s *Service) FinishRegistration(ctx context.Context, req *FinishRegistrationRequest) (*FinishRegistrationResponse, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	attResp, err := s.validator.VerifyResultRequest(req)
	if err != nil {
		return nil, err
	}

	clientData, err := s.validator.DecodeClientData(attResp.ClientDataJSON)
	if err != nil {
		return nil, err
	}
	if err := s.validator.VerifyCreateCeremony(clientData); err != nil {
		return nil, err
	}

	keyID, err := s.validator.VerifyBase64URL(req.ID)
	if err != nil {
		return nil, NewError("id is not base64url", ErrInvalidRequest)
	}

	// Normalize the asserted challenge into the representation used at
	// issuance before looking up the entry. The challenge is consumed by one
	// successful completion; anything else resolves to not-found.
	challenge, err := s.validator.ReencodeChallenge(clientData.Challenge)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.FindByChallenge(ctx, challenge)
	if err != nil {
		return nil, WrapError("find registration", err)
	}
	if entry.Status != StatusPending {
		return nil, NewError("find registration", ErrChallengeNotFound)
	}

	// Origin binding is checked before cryptographic acceptance.
	if err := s.domains.Verify(entry.Domain, clientData.Origin); err != nil {
		return nil, err
	}

	credential, err := s.verifier.Verify(ctx, req, entry)
	if err != nil {
		// Verifier-internal detail stays out of the caller-visible error.
		s.logger.Debug("attestation verifier rejected response",
			"username", entry.Username,
			"error", err)
		return nil, NewError("verify attestation", ErrAttestationRejected)
	}

	entry.PublicKeyMaterial = credential.PublicKey
	entry.SignatureAlgorithm = credential.SignatureAlgorithm
	entry.SignatureCounter = credential.SignCount
	entry.PublicKeyID = credential.CredentialID
	if entry.PublicKeyID == "" {
		entry.PublicKeyID = base64.RawURLEncoding.EncodeToString(keyID)
	}
	entry.CredentialType = CredentialTypePublicKey
	entry.RawAttestationResponse = string(req.Response)
	entry.Status = StatusRegistered
	entry.RegisteredAt = time.Now().UTC()

	if err := s.store.CompleteRegistration(ctx, entry); err != nil {
		return nil, WrapError("complete registration", err)
	}

	s.logger.Info("registration ceremony completed",
		"username", entry.Username,
		"publicKeyId", entry.PublicKeyID)

	return &FinishRegistrationResponse{
		Status:       StatusOK,
		ErrorMessage: "",
	}, nil
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// excludeCredentialsFor renders the exclusion list for a username. Only
// REGISTERED entries contribute; a PENDING entry has no usable credential.
func (s *Service) excludeCredentialsFor(ctx context.Context, username string) ([]PublicKeyCredentialDescriptor, error) {
	entries, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, WrapError("find registrations", err)
	}

	descriptors := make([]PublicKeyCredentialDescriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.Status != StatusRegistered {
			continue
		}
		descriptors = append(descriptors, PublicKeyCredentialDescriptor{
			Type: entry.CredentialType,
			ID:   entry.PublicKeyID,
		})
	}
	return descriptors, nil
}

// credentialParametersFor returns the supported algorithm list for a
// credential family. Both families currently share the ES256 set.
func credentialParametersFor(credentialType string) []PublicKeyCredentialParameter {
	return []PublicKeyCredentialParameter{
		{Type: credentialType, Alg: -7},
	}
}
