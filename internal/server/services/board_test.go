package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.boards.CreateBoard(ctx, "writer", "acme/site", "", "docs")
	require.NoError(t, err)
	assert.Equal(t, "site", b.Name)
	assert.Equal(t, "writer", b.CreatedBy)

	got, err := f.boards.GetBoardByRepo(ctx, "acme/site")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.boards.CreateBoard(ctx, "writer", "acme/site", "again", "")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreateBoard_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.boards.CreateBoard(ctx, "writer", "not-a-repo", "", "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.boards.CreateBoard(ctx, "reader", "acme/other", "", "")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = f.boards.CreateBoard(ctx, "", "acme/other", "", "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.boards.GetBoardByRepo(ctx, "acme/none")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.boards.UpdateBoard(ctx, "writer", "b1", "Renamed", "new")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", b.Name)
	assert.Equal(t, []events.Kind{events.BoardUpdated}, f.pub.kinds())

	_, err = f.boards.UpdateBoard(ctx, "reader", "b1", "x", "")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = f.boards.UpdateBoard(ctx, "writer", "b1", " ", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestListBoards_Paging(t *testing.T) {
	f := newFixture(t)
	f.store.addBoard("b2", "acme/two")
	f.store.addBoard("b3", "acme/three")

	all, err := f.boards.ListBoards(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := f.boards.ListBoards(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	assert.Equal(t, MaxPageSize, pageSize(1000))
	assert.Equal(t, DefaultPageSize, pageSize(-1))
}
