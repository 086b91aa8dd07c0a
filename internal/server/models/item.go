package models

import (
	"time"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

// Item is one stored secret. Envelope is the only place the secret lives.
type Item struct {
	ID         string
	OwnerID    string
	TopicName  string
	Envelope   cryptox.Envelope
	IsFavorite bool
	CreatedAt  time.Time
}

// ItemMetadata is what listings return; it never carries the envelope.
type ItemMetadata struct {
	ID         string    `json:"id" yaml:"id"`
	TopicName  string    `json:"topicName" yaml:"topicName"`
	IsFavorite bool      `json:"isFavorite" yaml:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

func (i *Item) Metadata() *ItemMetadata {
	return &ItemMetadata{ID: i.ID, TopicName: i.TopicName, IsFavorite: i.IsFavorite, CreatedAt: i.CreatedAt}
}

// RevealedSecret is the result of a successful retrieval.
type RevealedSecret struct {
	Secret    string `json:"password"`
	TopicName string `json:"topicName"`
}
