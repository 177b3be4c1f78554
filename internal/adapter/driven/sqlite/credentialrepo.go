package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Values are sealed with AES-256-GCM before write and opened after read.
type CredentialRepo struct {
	db     *DB
	sealer *sealer // nil when no key is configured.
}

// NewCredentialRepo creates a CredentialRepo. key must be 32 bytes, or nil to
// disable storage (Set, Get and List then return driven.ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) (*CredentialRepo, error) {
	repo := &CredentialRepo{db: db}
	if key == nil {
		return repo, nil
	}

	s, err := newSealer(key)
	if err != nil {
		return nil, err
	}
	repo.sealer = s
	return repo, nil
}

// Set stores or replaces the credential for the given service.
func (r *CredentialRepo) Set(ctx context.Context, service, plaintext string) error {
	if r.sealer == nil {
		return driven.ErrEncryptionKeyNotSet
	}

	sealed, err := r.sealer.seal(plaintext)
	if err != nil {
		return fmt.Errorf("seal credential %q: %w", service, err)
	}

	const query = `
		INSERT INTO credentials (service, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.conn.ExecContext(ctx, query, service, sealed); err != nil {
		return fmt.Errorf("set credential %q: %w", service, err)
	}
	return nil
}

// Get retrieves the plaintext credential for the given service.
// Returns ("", nil) if no credential exists for that service.
func (r *CredentialRepo) Get(ctx context.Context, service string) (string, error) {
	if r.sealer == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	var sealed string
	err := r.db.conn.QueryRowContext(ctx, `SELECT value FROM credentials WHERE service = ?`, service).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential %q: %w", service, err)
	}

	plaintext, err := r.sealer.open(sealed)
	if err != nil {
		return "", fmt.Errorf("open credential %q: %w", service, err)
	}
	return plaintext, nil
}

// List returns all stored credentials, ordered by service, with plaintext values.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	if r.sealer == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	rows, err := r.db.conn.QueryContext(ctx, `SELECT id, service, value, updated_at FROM credentials ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	creds := []model.Credential{}
	for rows.Next() {
		var (
			cred      model.Credential
			sealed    string
			updatedAt string
		)
		if err := rows.Scan(&cred.ID, &cred.Service, &sealed, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}

		if cred.Value, err = r.sealer.open(sealed); err != nil {
			return nil, fmt.Errorf("open credential %q: %w", cred.Service, err)
		}
		if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at for credential %q: %w", cred.Service, err)
		}

		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Delete removes the credential for the given service. Deleting a missing
// credential is not an error, and Delete works without a key so a session
// can always be torn down.
func (r *CredentialRepo) Delete(ctx context.Context, service string) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM credentials WHERE service = ?`, service); err != nil {
		return fmt.Errorf("delete credential %q: %w", service, err)
	}
	return nil
}
