package api

import (
	"testing"

	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestWidgetPatch_NullMeansUnchanged(t *testing.T) {
	c := jsonCodec{}

	data, err := c.Marshal(&PatchWidgetRequest{ID: "w1", Patch: WidgetPatch{Position: &geom.Point{X: 1, Y: 2}}})
	require.NoError(t, err)

	var got PatchWidgetRequest
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, &geom.Point{X: 1, Y: 2}, got.Patch.Position)
	assert.Nil(t, got.Patch.Size)
	assert.Nil(t, got.Patch.Config)
	assert.Nil(t, got.Patch.Title)

	data, err = c.Marshal(&WidgetPatch{Config: map[string]any{}})
	require.NoError(t, err)
	var p WidgetPatch
	require.NoError(t, c.Unmarshal(data, &p))
	assert.NotNil(t, p.Config, "an empty config is still a replacement")
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/repoboard.v1.BoardService/WatchBoard", FullMethod(MethodWatchBoard))
}
