package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/audit"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
)

// VaultService stores, lists, deletes and reveals an owner's secrets.
// Every operation is scoped to the authenticated owner id.
type VaultService struct {
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.Cipher
	hasher      *cryptox.Hasher
	audit       audit.Sink
	logger      logging.Logger
}

func NewVaultService(m repomanager.RepositoryManager, cipher *cryptox.Cipher, hasher *cryptox.Hasher, sink audit.Sink, logger logging.Logger) *VaultService {
	return &VaultService{
		repomanager: m,
		cipher:      cipher,
		hasher:      hasher,
		audit:       sink,
		logger:      logger.With("module", "vault"),
	}
}

// CreateItem encrypts secret and stores it under topicName.
func (s *VaultService) CreateItem(ctx context.Context, ownerID, topicName, secret string, isFavorite bool) (*models.ItemMetadata, error) {
	topic := strings.TrimSpace(topicName)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic name is required", common.ErrorValidation)
	}

	env, err := s.cipher.Encrypt(secret)
	if err != nil {
		s.logger.Error(ctx, "encrypt failed", "error", err)
		return nil, common.ErrorInternal
	}

	item, err := s.repomanager.Items().Create(ctx, &models.Item{
		OwnerID:    ownerID,
		TopicName:  topic,
		Envelope:   env,
		IsFavorite: isFavorite,
	})
	if err != nil {
		s.logger.Error(ctx, "create item failed", "owner_id", ownerID, "error", err)
		return nil, common.ErrorInternal
	}

	return item.Metadata(), nil
}

// ListItems returns the owner's item metadata, newest first.
func (s *VaultService) ListItems(ctx context.Context, ownerID string) ([]*models.ItemMetadata, error) {
	list, err := s.repomanager.Items().ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "list items failed", "owner_id", ownerID, "error", err)
		return nil, common.ErrorInternal
	}

	result := make([]*models.ItemMetadata, 0, len(list))
	for _, item := range list {
		result = append(result, item.Metadata())
	}
	return result, nil
}

// DeleteItem removes one of the owner's items. A missing item and another
// owner's item are indistinguishable to the caller.
func (s *VaultService) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	deleted, err := s.repomanager.Items().DeleteByIDAndOwner(ctx, itemID, ownerID)
	if err != nil {
		s.logger.Error(ctx, "delete item failed", "owner_id", ownerID, "item_id", itemID, "error", err)
		return common.ErrorInternal
	}
	if !deleted {
		return common.ErrNotFoundOrForbidden
	}
	return nil
}

// RetrieveSecret reveals an item's plaintext after all three security
// answers match the owner's stored answers.
func (s *VaultService) RetrieveSecret(ctx context.Context, ownerID, itemID string, answers [common.SecurityAnswerCount]string) (*models.RevealedSecret, error) {
	item, err := s.repomanager.Items().FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFoundOrForbidden
		}
		s.logger.Error(ctx, "find item failed", "item_id", itemID, "error", err)
		return nil, common.ErrorInternal
	}
	if item.OwnerID != ownerID {
		return nil, common.ErrNotFoundOrForbidden
	}

	// Answers are re-read on every call; they are never cached.
	account, err := s.repomanager.Accounts().FindByID(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "owner account unavailable", "owner_id", ownerID, "error", err)
		return nil, common.ErrorInternal
	}

	if !s.answersMatch(answers, account.AnswerHashes) {
		s.recordMismatch(ctx, account, itemID)
		return nil, common.ErrSecurityAnswerMismatch
	}

	secret, err := s.cipher.Decrypt(item.Envelope)
	if err != nil {
		s.logger.Error(ctx, "decrypt failed", "item_id", itemID, "error", err)
		return nil, common.ErrorInternal
	}

	return &models.RevealedSecret{Secret: secret, TopicName: item.TopicName}, nil
}

// answersMatch evaluates every answer, even after a mismatch.
func (s *VaultService) answersMatch(answers, digests [common.SecurityAnswerCount]string) bool {
	ok := true
	for i := range answers {
		if !s.hasher.VerifyAnswer(answers[i], digests[i]) {
			ok = false
		}
	}
	return ok
}

func (s *VaultService) recordMismatch(ctx context.Context, account *models.Account, itemID string) {
	e := audit.NewEvent(audit.KindSecurityAnswerMismatch, account.UserName, account.ID, itemID)
	if err := s.audit.Record(ctx, e); err != nil {
		s.logger.Warn(ctx, "audit record failed", "event_id", e.ID, "error", err)
	}
}
