package filestoresvc

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcacademy/backend/core"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(core.MediaConfig{
		Dir:     t.TempDir(),
		BaseURL: "http://localhost:8000/media/",
	})
	require.NoError(t, err)

	url, err := store.Save(ctx, "builds/abc/photo.png", "image/png", strings.NewReader("fake png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/media/builds/abc/photo.png", url)
	assert.Equal(t, url, store.URL("builds/abc/photo.png"))

	f, err := store.Open(ctx, "builds/abc/photo.png")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "fake png", string(data))

	_, err = store.Open(ctx, "builds/abc/../../../etc/passwd")
	assert.Error(t, err)

	require.NoError(t, store.Delete(ctx, "builds/abc/photo.png"))
	_, err = store.Open(ctx, "builds/abc/photo.png")
	assert.ErrorIs(t, err, core.ErrFileNotFound)

	// deleting a missing key is a no-op
	require.NoError(t, store.Delete(ctx, "builds/abc/photo.png"))
}
