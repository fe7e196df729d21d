package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	created := *user
	created.DeviceTokens = []string{}

	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO users (email, name, password_hash, email_verified)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		err := tx.QueryRowContext(ctx, query, user.Email, user.Name, user.PasswordHash, user.EmailVerified).
			Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return common.ErrAlreadyExists
			}
			return fmt.Errorf("db error: %w", err)
		}

		models.UserPatch{AddDeviceTokens: user.DeviceTokens}.Apply(&created)
		for _, token := range created.DeviceTokens {
			if err := addDeviceToken(ctx, tx, created.ID, token); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, email_verified, created_at
		FROM users
		WHERE email = $1
	`
	return r.get(ctx, r.db, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, email_verified, created_at
		FROM users
		WHERE id = $1
	`
	return r.get(ctx, r.db, query, id)
}

// Update runs the scalar update and the device-token set changes in one
// transaction. The UPDATE always runs so a missing user is detected even for
// device-token-only patches.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	var user *models.User

	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			UPDATE users
			SET name = COALESCE($2, name),
			    password_hash = COALESCE($3, password_hash),
			    email_verified = COALESCE($4, email_verified)
			WHERE id = $1
			RETURNING id, email, name, password_hash, email_verified, created_at
		`
		u, err := scanUser(tx.QueryRowContext(ctx, query, id,
			nullable(patch.Name), nullable(patch.PasswordHash), nullable(patch.EmailVerified)))
		if err != nil {
			return err
		}

		for _, token := range patch.AddDeviceTokens {
			if token == "" {
				continue
			}
			if err := addDeviceToken(ctx, tx, id, token); err != nil {
				return err
			}
		}
		for _, token := range patch.RemoveDeviceTokens {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM user_device_tokens WHERE user_id = $1 AND token = $2`, id, token); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}

		if u.DeviceTokens, err = loadDeviceTokens(ctx, tx, id); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *PostgresRepository) get(ctx context.Context, db dbx.DBTX, query string, arg any) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if user.DeviceTokens, err = loadDeviceTokens(ctx, db, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func addDeviceToken(ctx context.Context, db dbx.DBTX, userID, token string) error {
	query := `
		INSERT INTO user_device_tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func loadDeviceTokens(ctx context.Context, db dbx.DBTX, userID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT token FROM user_device_tokens WHERE user_id = $1 ORDER BY created_at, token`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
