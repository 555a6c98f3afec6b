package boards

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var cols = []string{"id", "name", "repo_full_name", "description", "created_by", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^INSERT\s+INTO\s+boards\s*\(id,\s*name,\s*repo_full_name,\s*description,\s*created_by\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at,\s*updated_at$`
	mock.ExpectQuery(q).
		WithArgs("b1", "Go", "golang/go", "", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	b := &models.Board{ID: "b1", Name: "Go", RepoFullName: "golang/go", CreatedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, now, b.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateRepo(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+boards`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &models.Board{ID: "b2", RepoFullName: "golang/go"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetByRepo(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `SELECT\s+id,.*FROM\s+boards\s+WHERE\s+lower\(repo_full_name\)\s*=\s*lower\(\$1\)`
	mock.ExpectQuery(q).WithArgs("Golang/Go").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "Go", "golang/go", "", "u1", time.Now(), time.Now()))
	mock.ExpectQuery(q).WithArgs("none/none").WillReturnError(sql.ErrNoRows)

	b, err := repo.GetByRepo(context.Background(), "Golang/Go")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)

	_, err = repo.GetByRepo(context.Background(), "none/none")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+boards\s+WHERE\s+id\s*=\s*\$1`).WithArgs("b1").WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), "b1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+boards\s+ORDER\s+BY\s+created_at,\s*id\s+LIMIT\s+\$1\s+OFFSET\s+\$2`).
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b1", "A", "a/a", "", "u1", time.Now(), time.Now()).
			AddRow("b2", "B", "b/b", "desc", "u1", time.Now(), time.Now()))

	got, err := repo.List(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "desc", got[1].Description)
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+boards\s+SET\s+name\s*=\s*\$2,\s*description\s*=\s*\$3.*WHERE\s+id\s*=\s*\$1\s+RETURNING`
	mock.ExpectQuery(q).WithArgs("b1", "New", "d").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "New", "a/a", "d", "u1", time.Now(), time.Now()))
	mock.ExpectQuery(q).WithArgs("gone", "x", "").WillReturnError(sql.ErrNoRows)

	b, err := repo.Update(context.Background(), "b1", "New", "d")
	require.NoError(t, err)
	assert.Equal(t, "New", b.Name)

	_, err = repo.Update(context.Background(), "gone", "x", "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
