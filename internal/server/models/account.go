// Package models defines the server-side records shared by services and
// repositories.
package models

import (
	"strings"
	"time"
)

// Account is a registered user. Hashes are set once at registration and
// never rewritten.
type Account struct {
	ID           string
	UserName     string
	PasswordHash string
	AnswerHashes [3]string
	CreatedAt    time.Time
}

// AccountView is the public projection of Account.
type AccountView struct {
	ID        string    `json:"id" yaml:"id"`
	UserName  string    `json:"username" yaml:"username"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func (a *Account) View() *AccountView {
	return &AccountView{ID: a.ID, UserName: a.UserName, CreatedAt: a.CreatedAt}
}

// NormalizeUserName lower-cases and trims a username.
func NormalizeUserName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
