package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	info, err := s.Put(ctx, BucketShowcase, "public/ada/index.html", []byte("<html>v1</html>"), "")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", info.ContentType)

	_, err = s.Put(ctx, BucketShowcase, "public/ada/index.html", []byte("<html>v2</html>"), "")
	require.NoError(t, err)

	obj, err := s.Get(ctx, BucketShowcase, "public/ada/index.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>v2</html>", string(obj.Data))
	assert.Equal(t, int64(15), obj.Size)

	_, err = s.Get(ctx, BucketPreviews, "public/ada/index.html")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemoryStore_ListAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range []string{"previews/u1/100/index.html", "previews/u1/100/style.css", "previews/u1/200/index.html", "previews/u2/100/index.html"} {
		_, err := s.Put(ctx, BucketPreviews, k, []byte("x"), "text/plain")
		require.NoError(t, err)
	}

	list, err := s.List(ctx, BucketPreviews, "previews/u1/100/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "previews/u1/100/index.html", list[0].Key)

	n, err := s.DeletePrefix(ctx, BucketPreviews, "previews/u1/")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rest, _ := s.List(ctx, BucketPreviews, "")
	assert.Len(t, rest, 1)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.Put(ctx, BucketMedia, "a.png", []byte("x"), "image/png")

	require.NoError(t, s.Delete(ctx, BucketMedia, "a.png"))
	assert.ErrorIs(t, s.Delete(ctx, BucketMedia, "a.png"), ErrObjectNotFound)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("public/ada/assets/img/logo.png"))
	for _, bad := range []string{"", "/abs", "public/../secret", "a//b", "./a"} {
		assert.ErrorIs(t, ValidateKey(bad), ErrInvalidKey, bad)
	}
}

func TestDetectContentType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	assert.Equal(t, "image/png", DetectContentType("assets/logo", png))
	assert.Equal(t, "text/css; charset=utf-8", DetectContentType("style.css", []byte("body{}")))
	assert.Equal(t, "application/javascript; charset=utf-8", DetectContentType("script.js", []byte("let a")))
}
