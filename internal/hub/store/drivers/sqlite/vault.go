package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cynit/hub/internal/hub/domain"
	"github.com/cynit/hub/internal/hub/store"
)

type vaultRepo struct {
	db *sql.DB
}

func (r *vaultRepo) Put(ctx context.Context, e domain.VaultEntry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vault_entries (kid, label, jwk, created_at) VALUES (?, ?, ?, ?)`,
		e.Kid, e.Label, e.JWK, createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *vaultRepo) Get(ctx context.Context, kid string) (domain.VaultEntry, error) {
	var e domain.VaultEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT kid, label, jwk, created_at FROM vault_entries WHERE kid = ?`,
		kid,
	).Scan(&e.Kid, &e.Label, &e.JWK, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VaultEntry{}, store.ErrNotFound
		}
		return domain.VaultEntry{}, err
	}
	return e, nil
}

func (r *vaultRepo) List(ctx context.Context) ([]domain.VaultEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kid, label, created_at FROM vault_entries ORDER BY kid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.VaultEntry
	for rows.Next() {
		var e domain.VaultEntry
		if err := rows.Scan(&e.Kid, &e.Label, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *vaultRepo) Delete(ctx context.Context, kid string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vault_entries WHERE kid = ?`, kid,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// isUniqueViolation detects SQLite unique constraint errors without tying
// the repo to driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
