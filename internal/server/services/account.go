// Package services contains server-side business logic. This file implements
// AccountService: registration, login and session lookups.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
)

// AccountService owns the account lifecycle. It holds no mutable state and
// is safe for concurrent use.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.Hasher
	sessions    *auth.SessionIssuer
	logger      logging.Logger
}

// NewAccountService wires the service to its store, hasher and issuer.
func NewAccountService(m repomanager.RepositoryManager, hasher *cryptox.Hasher, sessions *auth.SessionIssuer, logger logging.Logger) *AccountService {
	return &AccountService{
		repomanager: m,
		hasher:      hasher,
		sessions:    sessions,
		logger:      logger.With("module", "accounts"),
	}
}

// Register creates an account and returns its public view plus a session
// token. The username is lower-cased and trimmed; answers are normalized
// by the hasher; the password is hashed verbatim.
func (s *AccountService) Register(ctx context.Context, userName, password string, answers [common.SecurityAnswerCount]string) (*models.AccountView, string, error) {
	name := models.NormalizeUserName(userName)
	if name == "" {
		return nil, "", fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if password == "" {
		return nil, "", fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	for i, a := range answers {
		if cryptox.NormalizeAnswer(a) == "" {
			return nil, "", fmt.Errorf("%w: security answer %d is required", common.ErrorValidation, i+1)
		}
	}

	account := &models.Account{UserName: name}

	var err error
	if account.PasswordHash, err = s.hasher.Hash(password); err != nil {
		return nil, "", s.hashError(ctx, err)
	}
	for i, a := range answers {
		if account.AnswerHashes[i], err = s.hasher.HashAnswer(a); err != nil {
			return nil, "", s.hashError(ctx, err)
		}
	}

	created, err := s.repomanager.Accounts().Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, "", common.ErrDuplicateUsername
		}
		s.logger.Error(ctx, "create account failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	token, err := s.issue(ctx, created.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "account registered", "account_id", created.ID)
	return created.View(), token, nil
}

// Login checks credentials. An unknown user and a wrong password produce
// the same error, and an unknown user still pays for one hash comparison.
func (s *AccountService) Login(ctx context.Context, userName, password string) (*models.AccountView, string, error) {
	account, err := s.repomanager.Accounts().FindByUserName(ctx, models.NormalizeUserName(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, "")
			return nil, "", common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "find account failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.issue(ctx, account.ID)
	if err != nil {
		return nil, "", err
	}
	return account.View(), token, nil
}

// CurrentAccount resolves a session token to the account it belongs to.
func (s *AccountService) CurrentAccount(ctx context.Context, token string) (*models.AccountView, error) {
	accountID, err := s.sessions.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "session rejected", "reason", err.Error())
		return nil, common.ErrInvalidCredentials
	}
	return s.AccountByID(ctx, accountID)
}

// AccountByID loads the public view of an already authenticated account.
func (s *AccountService) AccountByID(ctx context.Context, accountID string) (*models.AccountView, error) {
	account, err := s.repomanager.Accounts().FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "find account failed", "error", err)
		return nil, common.ErrorInternal
	}
	return account.View(), nil
}

// Logout validates the token. Sessions are stateless, so the caller is
// responsible for discarding it; the token stays valid until it expires.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	accountID, err := s.sessions.Verify(token)
	if err != nil {
		return common.ErrNotAuthenticated
	}
	s.logger.Info(ctx, "logout", "account_id", accountID)
	return nil
}

func (s *AccountService) issue(ctx context.Context, accountID string) (string, error) {
	token, err := s.sessions.Issue(accountID)
	if err != nil {
		s.logger.Error(ctx, "issue session failed", "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *AccountService) hashError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorValidation) {
		return err
	}
	s.logger.Error(ctx, "hash failed", "error", err)
	return common.ErrorInternal
}
