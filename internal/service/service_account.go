// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// Argon2id parameters per the OWASP recommendation: 1 iteration over 64 MiB
// with 4 lanes, 32-byte output.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// accountService implements [AccountService] with argon2id secret hashing
// and HMAC-SHA256 JWT session tokens.
type accountService struct {
	accounts store.AccountRepository

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAccountService wires the account service to its repository and the JWT
// issuance settings.
func NewAccountService(accounts store.AccountRepository, cfg config.ServerAuth, logger *logger.Logger) AccountService {
	return &accountService{
		accounts:      accounts,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

func (a *accountService) Register(ctx context.Context, creds models.Credentials) (models.Account, models.AuthToken, error) {
	log := logger.FromContext(ctx)

	if creds.Login == "" || creds.Secret == "" {
		return models.Account{}, models.AuthToken{}, ErrInvalidDataProvided
	}

	hashed, err := hashSecret(creds.Secret)
	if err != nil {
		return models.Account{}, models.AuthToken{}, fmt.Errorf("hash account secret: %w", err)
	}

	account, err := a.accounts.CreateAccount(ctx, models.Account{
		Login:  creds.Login,
		Secret: hashed,
	})
	if err != nil {
		log.Err(err).
			Str("func", "accountService.Register").
			Str("login", creds.Login).
			Msg("account creation ended with error")
		return models.Account{}, models.AuthToken{}, fmt.Errorf("account creation ended with error: %w", err)
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, account.ID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Account{}, models.AuthToken{}, fmt.Errorf("issue session token: %w", err)
	}

	account.Secret = ""
	return account, token, nil
}

func (a *accountService) Login(ctx context.Context, creds models.Credentials) (models.Account, models.AuthToken, error) {
	log := logger.FromContext(ctx)

	if creds.Login == "" || creds.Secret == "" {
		return models.Account{}, models.AuthToken{}, ErrInvalidDataProvided
	}

	account, err := a.accounts.FindAccountByLogin(ctx, creds.Login)
	if errors.Is(err, store.ErrNoAccountFound) {
		// Indistinguishable from a wrong secret so logins cannot probe for
		// registered names.
		return models.Account{}, models.AuthToken{}, ErrWrongSecret
	}
	if err != nil {
		log.Err(err).
			Str("func", "accountService.Login").
			Str("login", creds.Login).
			Msg("account lookup ended with error")
		return models.Account{}, models.AuthToken{}, fmt.Errorf("account lookup ended with error: %w", err)
	}

	ok, err := verifySecret(creds.Secret, account.Secret)
	if err != nil {
		return models.Account{}, models.AuthToken{}, fmt.Errorf("verify account secret: %w", err)
	}
	if !ok {
		return models.Account{}, models.AuthToken{}, ErrWrongSecret
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, account.ID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Account{}, models.AuthToken{}, fmt.Errorf("issue session token: %w", err)
	}

	account.Secret = ""
	return account, token, nil
}

func (a *accountService) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	account, err := a.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	account.Secret = ""
	return account, nil
}

// hashSecret derives an argon2id hash and encodes it with its salt in the
// standard $argon2id$... form.
func hashSecret(secret string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifySecret compares a candidate secret against a stored encoded hash in
// constant time.
func verifySecret(secret, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New("malformed secret hash")
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("malformed secret hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("malformed secret hash salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("malformed secret hash digest: %w", err)
	}

	got := argon2.IDKey([]byte(secret), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
