package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addGuestbook(f *fixture) {
	f.store.addWidget(&models.Widget{ID: "g1", BoardID: "b1", Type: widgets.TypeGuestbook})
}

func TestAddComment_LimitPerUser(t *testing.T) {
	f := newFixture(t)
	addGuestbook(f)
	ctx := context.Background()

	for i := 0; i < common.DefaultGuestbookCommentLimit; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
		c, err := f.guestbook.AddComment(ctx, "reader", "g1", " hello ")
		require.NoError(t, err)
		assert.Equal(t, "hello", c.Body)
		assert.Equal(t, "rick", c.Author)
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.guestbook.AddComment(ctx, "reader", "g1", "one more")
	assert.ErrorIs(t, err, common.ErrorLimitExceeded)

	// other users are counted separately
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err = f.guestbook.AddComment(ctx, "writer", "g1", "hi")
	require.NoError(t, err)

	assert.Equal(t, common.DefaultGuestbookCommentLimit+2, f.store.locks)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAddComment_Validation(t *testing.T) {
	f := newFixture(t)
	addGuestbook(f)
	ctx := context.Background()

	_, err := f.guestbook.AddComment(ctx, "reader", "g1", "   ")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.guestbook.AddComment(ctx, "reader", "g1", strings.Repeat("x", maxCommentLength+1))
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.guestbook.AddComment(ctx, "", "g1", "hi")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestListComments_NewestFirstWithCursor(t *testing.T) {
	f := newFixture(t)
	addGuestbook(f)
	base := time.Now()
	for i, body := range []string{"first", "second", "third"} {
		f.store.comments = append(f.store.comments, &models.GuestbookComment{
			ID: body, WidgetID: "g1", Body: body, CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	ctx := context.Background()

	page, err := f.guestbook.ListComments(ctx, "g1", time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].Body)
	assert.Equal(t, "second", page[1].Body)

	next, err := f.guestbook.ListComments(ctx, "g1", page[1].CreatedAt, 2)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "first", next[0].Body)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	addGuestbook(f)
	f.store.comments = append(f.store.comments, &models.GuestbookComment{ID: "c1", WidgetID: "g1", UserID: "reader"})
	ctx := context.Background()

	assert.ErrorIs(t, f.guestbook.DeleteComment(ctx, "writer", "c1"), common.ErrorForbidden)
	assert.ErrorIs(t, f.guestbook.DeleteComment(ctx, "", "c1"), common.ErrorUnauthorized)
	require.NoError(t, f.guestbook.DeleteComment(ctx, "reader", "c1"))
	assert.ErrorIs(t, f.guestbook.DeleteComment(ctx, "reader", "c1"), common.ErrorNotFound)
}
