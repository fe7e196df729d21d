package credentials

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
)

var credentialRowColumns = []string{"id", "token", "user_id", "kind", "expires_at", "revoked", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestSave_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+credentials\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`
	expires := time.Now().Add(10 * time.Minute)
	created := time.Now()

	mock.ExpectQuery(q).
		WithArgs("tok123", "u1", "resetPassword", expires, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c1", created))

	got, err := repo.Save(context.Background(), &models.Credential{
		Value: "tok123", OwnerID: "u1", Kind: models.KindResetPassword, ExpiresAt: expires,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "c1" || !got.CreatedAt.Equal(created) || got.Value != "tok123" {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+credentials`).WillReturnError(errors.New("db down"))

	_, err := repo.Save(context.Background(), &models.Credential{Value: "t", OwnerID: "u1", Kind: models.KindRefresh})
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindActive_AnyOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+credentials\s+WHERE\s+token\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s+AND\s+revoked\s*=\s*FALSE`
	expires := time.Now().Add(time.Hour)
	mock.ExpectQuery(q).
		WithArgs("tok123", "refresh").
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).
			AddRow("c1", "tok123", "u1", "refresh", expires, false, time.Now()))

	got, err := repo.FindActive(context.Background(), "tok123", models.KindRefresh, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OwnerID != "u1" || got.Kind != models.KindRefresh || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindActive_WithOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+token\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3\s+AND\s+revoked\s*=\s*FALSE`
	mock.ExpectQuery(q).
		WithArgs("ABC123", "resetPassword", "u1").
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).
			AddRow("c1", "ABC123", "u1", "resetPassword", time.Now(), false, time.Now()))

	if _, err := repo.FindActive(context.Background(), "ABC123", models.KindResetPassword, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindActive_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+credentials`).
		WithArgs("missing", "refresh").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActive(context.Background(), "missing", models.KindRefresh, "")
	if !errors.Is(err, common.ErrCredentialNotFound) || !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrCredentialNotFound, got %v", err)
	}
}

func TestFindActive_UnknownKindInRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+credentials`).
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).
			AddRow("c1", "t", "u1", "bogus", time.Now(), false, time.Now()))

	_, err := repo.FindActive(context.Background(), "t", models.KindRefresh, "")
	if err == nil || !regexp.MustCompile(`db error: unknown credential kind`).MatchString(err.Error()) {
		t.Fatalf("expected kind decode error, got %v", err)
	}
}

func TestFindLatestActiveByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s+AND\s+revoked\s*=\s*FALSE\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+1`
	mock.ExpectQuery(q).
		WithArgs("u1", "refresh").
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).
			AddRow("c9", "r9", "u1", "refresh", time.Now(), false, time.Now()))

	got, err := repo.FindLatestActiveByOwner(context.Background(), "u1", models.KindRefresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != "r9" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestDeleteAllOfKind(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+credentials\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s*$`
	mock.ExpectExec(q).
		WithArgs("u1", "resetPassword").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteAllOfKind(context.Background(), "u1", models.KindResetPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", n)
	}
}

func TestDeleteAllOfKind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+credentials`).WillReturnError(errors.New("db err"))

	_, err := repo.DeleteAllOfKind(context.Background(), "u1", models.KindVerifyEmail)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+credentials\s+WHERE\s+token\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s*$`
	mock.ExpectExec(q).
		WithArgs("tok123", "refresh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(context.Background(), "tok123", models.KindRefresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row deleted, got %d", n)
	}
}

func TestDelete_NothingMatched(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+credentials`).
		WithArgs("gone", "refresh").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Delete(context.Background(), "gone", models.KindRefresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows deleted, got %d", n)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+credentials`).
		WithArgs("tok123", "refresh").
		WillReturnError(errors.New("db err"))

	_, err := repo.Delete(context.Background(), "tok123", models.KindRefresh)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestRevoke_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+credentials\s+SET\s+revoked\s*=\s*TRUE\s+WHERE\s+token\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s+AND\s+revoked\s*=\s*FALSE\s+RETURNING`
	mock.ExpectQuery(q).
		WithArgs("r1", "refresh").
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).
			AddRow("c1", "r1", "u1", "refresh", time.Now(), true, time.Now()))

	got, err := repo.Revoke(context.Background(), "r1", models.KindRefresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Revoked {
		t.Fatalf("expected revoked credential, got %+v", got)
	}
}

func TestRevoke_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+credentials`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Revoke(context.Background(), "gone", models.KindRefresh)
	if !errors.Is(err, common.ErrCredentialNotFound) {
		t.Fatalf("want common.ErrCredentialNotFound, got %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	before := time.Now()
	mock.ExpectExec(`(?s)DELETE\s+FROM\s+credentials\s+WHERE\s+expires_at\s*<=\s*\$1`).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background(), before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7, got %d", n)
	}
}
