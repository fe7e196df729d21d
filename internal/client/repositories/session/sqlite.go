package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/client/models"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT email, user_id, access_token, access_expires, refresh_token, refresh_expires, device_token
		FROM session WHERE id = 1
	`).Scan(&s.Email, &s.UserID, &s.AccessToken, &s.AccessExpires, &s.RefreshToken, &s.RefreshExpires, &s.DeviceToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, email, user_id, access_token, access_expires, refresh_token, refresh_expires, device_token)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			user_id = excluded.user_id,
			access_token = excluded.access_token,
			access_expires = excluded.access_expires,
			refresh_token = excluded.refresh_token,
			refresh_expires = excluded.refresh_expires,
			device_token = excluded.device_token
	`, s.Email, s.UserID, s.AccessToken, s.AccessExpires.UTC(), s.RefreshToken, s.RefreshExpires.UTC(), s.DeviceToken)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
