package model

import (
	"time"
)

type Account struct {
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	APIKey       string    `db:"api_key" json:"api_key"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type CreateAccountParams struct {
	Username     string
	PasswordHash string
	APIKey       string
}
