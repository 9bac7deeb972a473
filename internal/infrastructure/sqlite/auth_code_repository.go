package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

type authCodeRepository struct {
	db *DB
}

func NewAuthCodeRepository(db *DB) repository.AuthCodeRepository {
	return &authCodeRepository{db: db}
}

func (r *authCodeRepository) Create(ctx context.Context, authCode *domain.AuthCode) error {
	scopes, err := json.Marshal(authCode.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	query := `
		INSERT INTO auth_code (code, username, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		authCode.Code,
		authCode.Username,
		string(scopes),
		authCode.ExpiresAt,
		authCode.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth code: %w", err)
	}

	return nil
}

func (r *authCodeRepository) FindByCode(ctx context.Context, code string) (*domain.AuthCode, error) {
	query := `SELECT code, username, scopes, expires_at, created_at FROM auth_code WHERE code = ?`

	var authCode domain.AuthCode
	var scopes string
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&authCode.Code,
		&authCode.Username,
		&scopes,
		&authCode.ExpiresAt,
		&authCode.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("auth code %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan auth code: %w", err)
	}

	if err := json.Unmarshal([]byte(scopes), &authCode.Scopes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scopes: %w", err)
	}

	return &authCode, nil
}

func (r *authCodeRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_code WHERE code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete auth code: %w", err)
	}
	return nil
}

func (r *authCodeRepository) DeleteExpired(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_code WHERE expires_at < ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired auth codes: %w", err)
	}
	return nil
}
