package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

const credentialColumns = `id, token, user_id, kind, expires_at, revoked, created_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO credentials (token, user_id, kind, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	saved := *c
	err := r.db.QueryRowContext(ctx, query, c.Value, c.OwnerID, string(c.Kind), c.ExpiresAt, c.Revoked).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, value string, kind models.Kind, ownerID string) (*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE token = $1 AND kind = $2 AND revoked = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	args := []any{value, string(kind)}
	if ownerID != "" {
		query = `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE token = $1 AND kind = $2 AND user_id = $3 AND revoked = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
		args = append(args, ownerID)
	}
	return scanCredential(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) FindLatestActiveByOwner(ctx context.Context, ownerID string, kind models.Kind) (*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE user_id = $1 AND kind = $2 AND revoked = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanCredential(r.db.QueryRowContext(ctx, query, ownerID, string(kind)))
}

func (r *PostgresRepository) DeleteAllOfKind(ctx context.Context, ownerID string, kind models.Kind) (int64, error) {
	query := `
		DELETE FROM credentials
		WHERE user_id = $1 AND kind = $2
	`
	res, err := r.db.ExecContext(ctx, query, ownerID, string(kind))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, value string, kind models.Kind) (int64, error) {
	query := `
		DELETE FROM credentials
		WHERE token = $1 AND kind = $2
	`
	res, err := r.db.ExecContext(ctx, query, value, string(kind))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, value string, kind models.Kind) (*models.Credential, error) {
	query := `
		UPDATE credentials
		SET revoked = TRUE
		WHERE token = $1 AND kind = $2 AND revoked = FALSE
		RETURNING ` + credentialColumns + `
	`
	return scanCredential(r.db.QueryRowContext(ctx, query, value, string(kind)))
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM credentials
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func scanCredential(row *sql.Row) (*models.Credential, error) {
	c := &models.Credential{}
	var kind string
	if err := row.Scan(&c.ID, &c.Value, &c.OwnerID, &kind, &c.ExpiresAt, &c.Revoked, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	k, err := models.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Kind = k
	return c, nil
}
