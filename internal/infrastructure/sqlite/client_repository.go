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

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	scopes, err := json.Marshal(client.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	query := `
		INSERT INTO client (id, secret, label, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		client.ID,
		client.Secret,
		client.Label,
		string(scopes),
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT id, secret, label, scopes, created_at, updated_at FROM client WHERE id = ?`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %w", repository.ErrNotFound)
	}
	return client, err
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	scopes, err := json.Marshal(client.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	client.UpdatedAt = time.Now()

	query := `UPDATE client SET secret = ?, label = ?, scopes = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		client.Secret,
		client.Label,
		string(scopes),
		client.UpdatedAt,
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %w: %s", repository.ErrNotFound, client.ID)
	}

	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %w: %s", repository.ErrNotFound, id)
	}

	return nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	query := `SELECT id, secret, label, scopes, created_at, updated_at FROM client ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

func scanClient(scan func(...interface{}) error) (*domain.Client, error) {
	var client domain.Client
	var scopes string

	err := scan(
		&client.ID,
		&client.Secret,
		&client.Label,
		&scopes,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	if err := json.Unmarshal([]byte(scopes), &client.Scopes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scopes: %w", err)
	}

	return &client, nil
}
