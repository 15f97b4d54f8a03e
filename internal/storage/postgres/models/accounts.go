package models

import (
	"context"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = "id, username, email, password_hash, role, refresh_token, created_at, updated_at"

type AccountModel struct {
	DB *pgxpool.Pool
}

func (m *AccountModel) Insert(ctx context.Context, username, email string, passwordHash []byte, role models.Role) (*models.Account, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO accounts (username, email, password_hash, role) VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		username,
		email,
		passwordHash,
		role,
	)
	account, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &account, nil
}

// GetByLogin finds an account of the given role whose email or username equals login.
func (m *AccountModel) GetByLogin(ctx context.Context, role models.Role, login string) (*models.Account, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE role = $1 AND (lower(email) = lower($2) OR username = $2)
		ORDER BY id LIMIT 1`,
		role,
		login,
	)
	account, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &account, nil
}

func (m *AccountModel) GetByRefreshToken(ctx context.Context, tokenDigest string) (*models.Account, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE refresh_token = $1`,
		tokenDigest,
	)
	account, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &account, nil
}

// SetRefreshToken overwrites the single refresh token slot. A nil digest clears it.
func (m *AccountModel) SetRefreshToken(ctx context.Context, id int64, tokenDigest *string) error {
	status, err := m.DB.Exec(
		ctx,
		"UPDATE accounts SET refresh_token = $1, updated_at = now() WHERE id = $2",
		tokenDigest,
		id,
	)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *AccountModel) List(ctx context.Context, role models.Role) ([]models.Account, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY id`,
		role,
	)
	accounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return accounts, nil
}

func (m *AccountModel) Get(ctx context.Context, id int64, role models.Role) (*models.Account, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND role = $2`,
		id,
		role,
	)
	account, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &account, nil
}

func (m *AccountModel) Update(ctx context.Context, account *models.Account) (*models.Account, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE accounts SET username = $1, email = $2, password_hash = $3, updated_at = now()
		WHERE id = $4 AND role = $5 RETURNING `+accountColumns,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.ID,
		account.Role,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &updated, nil
}

func (m *AccountModel) Delete(ctx context.Context, id int64, role models.Role) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM accounts WHERE id = $1 AND role = $2", id, role)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
