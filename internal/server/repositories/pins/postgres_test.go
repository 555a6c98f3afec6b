package pins

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
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

func TestUpsert_ReplacesOnConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT\s+INTO\s+map_pins.*ON\s+CONFLICT\s+\(widget_id,\s*user_id\)\s+DO\s+UPDATE.*RETURNING\s+updated_at`
	mock.ExpectQuery(q).WithArgs("w1", "u1", "octocat", 52.5, 13.4, "Berlin").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	p := &models.MapPin{WidgetID: "w1", UserID: "u1", Author: "octocat", Lat: 52.5, Lng: 13.4, Label: "Berlin"}
	require.NoError(t, repo.Upsert(context.Background(), p))
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+map_pins\s+WHERE\s+widget_id\s*=\s*\$1`).WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"widget_id", "user_id", "author", "lat", "lng", "label", "updated_at"}).
			AddRow("w1", "u1", "a", 1.0, 2.0, "", time.Now()).
			AddRow("w1", "u2", "b", 3.0, 4.0, "x", time.Now()))

	got, err := repo.List(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[1].Lat)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `DELETE\s+FROM\s+map_pins\s+WHERE\s+widget_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("w1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("w1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+map_pins\s+WHERE\s+widget_id\s*=\s*\$1$`).WithArgs("w1").
		WillReturnError(errors.New("db down"))

	assert.NoError(t, repo.Delete(context.Background(), "w1", "u1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "w1", "u1"), common.ErrorNotFound)

	_, err := repo.DeleteByWidget(context.Background(), "w1")
	assert.Error(t, err)
}
