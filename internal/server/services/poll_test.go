package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPoll(f *fixture) {
	f.store.addWidget(&models.Widget{ID: "p1", BoardID: "b1", Type: widgets.TypePoll,
		Config: map[string]any{"question": "?", "options": []any{"Go", "Rust", "Zig"}}})
}

func TestVote_OncePerUser(t *testing.T) {
	f := newFixture(t)
	addPoll(f)
	ctx := context.Background()

	res, err := f.poll.Vote(ctx, "reader", "p1", "Go")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, "Go", res.MyVote)

	_, err = f.poll.Vote(ctx, "reader", "p1", "Rust")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = f.poll.Vote(ctx, "writer", "p1", "Rust")
	require.NoError(t, err)

	res, err = f.poll.Results(ctx, "", "p1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Go": 1, "Rust": 1, "Zig": 0}, res.Counts)
	assert.Equal(t, int64(2), res.Total)
	assert.Empty(t, res.MyVote)
}

func TestVote_Rejections(t *testing.T) {
	f := newFixture(t)
	addPoll(f)
	f.store.addWidget(&models.Widget{ID: "t1", BoardID: "b1", Type: widgets.TypeText})
	ctx := context.Background()

	_, err := f.poll.Vote(ctx, "reader", "p1", "Java")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.poll.Vote(ctx, "", "p1", "Go")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.poll.Vote(ctx, "reader", "t1", "Go")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.poll.Vote(ctx, "reader", "nope", "Go")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPollOptions(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, pollOptions(map[string]any{"options": []any{"a", 1, "b"}}))
	assert.Equal(t, []string{"x"}, pollOptions(map[string]any{"options": []string{"x"}}))
	assert.Nil(t, pollOptions(map[string]any{}))
}
