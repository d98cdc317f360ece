package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vendorlens/diligence-api/internal/model"
)

type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindActiveByUsername(ctx context.Context, username string) (*model.Account, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AccountRepository
}

type accountRepo struct {
	db sqlxDB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) WithTx(tx *sqlx.Tx) AccountRepository {
	return &accountRepo{db: tx}
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM api_users WHERE username = $1
	`, username)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindActiveByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM api_users
		WHERE username = $1 AND is_active = true
	`, username)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO api_users (username, password_hash, api_key, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING *
	`, params.Username, params.PasswordHash, params.APIKey)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
