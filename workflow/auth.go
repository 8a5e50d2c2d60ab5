// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// defaultTokenTTL is the lifetime of a signed request token when none is configured.
const defaultTokenTTL = 5 * time.Minute

// JWTConfig configures HS256 signing of outbound workflow requests, as accepted by
// webhook nodes that use JWT authentication.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Subject  string
	TTL      time.Duration
}

type jwtSigner struct {
	cfg JWTConfig
	key []byte
}

func newJWTSigner(cfg JWTConfig) (*jwtSigner, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	return &jwtSigner{cfg: cfg, key: []byte(cfg.Secret)}, nil
}

// sign returns a compact serialized token valid from now for the configured TTL.
func (s *jwtSigner) sign(now time.Time) (string, error) {
	b := jwt.NewBuilder().
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(s.cfg.TTL)).
		JwtID(uuid.NewString())
	if s.cfg.Issuer != "" {
		b = b.Issuer(s.cfg.Issuer)
	}
	if s.cfg.Audience != "" {
		b = b.Audience([]string{s.cfg.Audience})
	}
	if s.cfg.Subject != "" {
		b = b.Subject(s.cfg.Subject)
	}
	tok, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}
