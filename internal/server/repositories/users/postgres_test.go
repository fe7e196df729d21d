package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "name", "password_hash", "email_verified", "created_at"}

const (
	insertUserQ   = `(?s)^\s*INSERT\s+INTO\s+users\s*\(email,\s*name,\s*password_hash,\s*email_verified\).*RETURNING\s+id,\s*created_at\s*$`
	insertTokenQ  = `(?s)^\s*INSERT\s+INTO\s+user_device_tokens\s*\(user_id,\s*token\).*ON\s+CONFLICT\s+DO\s+NOTHING\s*$`
	deleteTokenQ  = `(?s)^DELETE\s+FROM\s+user_device_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+token\s*=\s*\$2$`
	selectTokensQ = `(?s)^SELECT\s+token\s+FROM\s+user_device_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*token$`
	byEmailQ      = `(?s)^\s*SELECT\s+id,\s*email,\s*name,\s*password_hash,\s*email_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQ         = `(?s)^\s*SELECT\s+id,\s*email,\s*name,\s*password_hash,\s*email_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	updateUserQ   = `(?s)^\s*UPDATE\s+users\s+SET\s+name\s*=\s*COALESCE\(\$2,\s*name\).*WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,\s*email,\s*name,\s*password_hash,\s*email_verified,\s*created_at\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(insertUserQ).
		WithArgs("alice@example.com", "Alice", "hash", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u1", created))
	mock.ExpectExec(insertTokenQ).WithArgs("u1", "dev-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Create(context.Background(), &models.User{
		Email: "alice@example.com", Name: "Alice", PasswordHash: "hash",
		DeviceTokens: []string{"dev-1", "dev-1", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, []string{"dev-1"}, got.DeviceTokens)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(insertUserQ).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(insertUserQ).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(byEmailQ).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "alice@example.com", "Alice", "hash", true, created))
	mock.ExpectQuery(selectTokensQ).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("dev-1").AddRow("dev-2"))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, &models.User{
		ID: "u1", Email: "alice@example.com", Name: "Alice", PasswordHash: "hash",
		EmailVerified: true, DeviceTokens: []string{"dev-1", "dev-2"}, CreatedAt: created,
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, common.ErrUserNotFound)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_NoDeviceTokens(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "a@b.c", "", "hash", false, time.Now()))
	mock.ExpectQuery(selectTokensQ).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"token"}))

	got, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, got.DeviceTokens)
	assert.NotNil(t, got.DeviceTokens)
}

func TestGetByID_TokenQueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "a@b.c", "", "hash", false, time.Now()))
	mock.ExpectQuery(selectTokensQ).WithArgs("u1").WillReturnError(errors.New("boom"))

	_, err := repo.GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestUpdate_PasswordAndDeviceTokens(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	hash := "new-hash"
	created := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(updateUserQ).
		WithArgs("u1", nil, "new-hash", nil).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "a@b.c", "A", "new-hash", true, created))
	mock.ExpectExec(insertTokenQ).WithArgs("u1", "dev-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteTokenQ).WithArgs("u1", "dev-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectTokensQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("dev-2"))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), "u1", models.UserPatch{
		PasswordHash:       &hash,
		AddDeviceTokens:    []string{"dev-2", ""},
		RemoveDeviceTokens: []string{"dev-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Equal(t, []string{"dev-2"}, got.DeviceTokens)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_EmailVerified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	verified := true
	mock.ExpectBegin()
	mock.ExpectQuery(updateUserQ).
		WithArgs("u1", nil, nil, true).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "a@b.c", "A", "h", true, time.Now()))
	mock.ExpectQuery(selectTokensQ).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"token"}))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), "u1", models.UserPatch{EmailVerified: &verified})
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFoundRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(updateUserQ).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "ghost", models.UserPatch{AddDeviceTokens: []string{"d"}})
	require.ErrorIs(t, err, common.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_InsideCallerTransaction(t *testing.T) {
	_, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(updateUserQ).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "a@b.c", "A", "h", false, time.Now()))
	mock.ExpectQuery(selectTokensQ).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"token"}))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	// a *sql.Tx handle must not open a nested transaction
	_, err = NewPostgresRepository(tx).Update(context.Background(), "u1", models.UserPatch{})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
