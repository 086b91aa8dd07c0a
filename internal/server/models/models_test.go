package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeUserName(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUserName("  ALICE "))
	assert.Equal(t, "alice", NormalizeUserName("alice"))
	assert.Equal(t, "", NormalizeUserName("   "))
}

func TestProjectionsDropSensitiveFields(t *testing.T) {
	now := time.Now()
	a := &Account{ID: "a1", UserName: "bob", PasswordHash: "h", AnswerHashes: [3]string{"1", "2", "3"}, CreatedAt: now}
	assert.Equal(t, &AccountView{ID: "a1", UserName: "bob", CreatedAt: now}, a.View())

	it := &Item{ID: "i1", OwnerID: "a1", TopicName: "gmail", Envelope: cryptox.Envelope{Nonce: []byte{1}, Ciphertext: []byte{2}}, IsFavorite: true, CreatedAt: now}
	assert.Equal(t, &ItemMetadata{ID: "i1", TopicName: "gmail", IsFavorite: true, CreatedAt: now}, it.Metadata())
}
