// Package models holds the values the CLI receives from the server.
package models

import "time"

type Account struct {
	ID        string    `json:"id" yaml:"id"`
	UserName  string    `json:"username" yaml:"username"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Item is the metadata of one stored secret. It never carries the secret.
type Item struct {
	ID         string    `json:"id" yaml:"id"`
	TopicName  string    `json:"topicName" yaml:"topicName"`
	IsFavorite bool      `json:"isFavorite" yaml:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// Secret is a revealed item.
type Secret struct {
	TopicName string `json:"topicName" yaml:"topicName"`
	Password  string `json:"password" yaml:"password"`
}
