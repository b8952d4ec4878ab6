package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-media-gateway/config"
)

func locatorFor(t *testing.T, style, publicURL string) AssetLocator {
	t.Helper()
	env := &config.EnvConfig{}
	env.Storage.Bucket = "mybucket"
	env.Storage.PublicURL = publicURL
	env.Storage.URLStyle = style
	l, err := NewAssetLocator(env)
	require.NoError(t, err)
	return l
}

func TestPathStyleResolver(t *testing.T) {
	l := locatorFor(t, config.URLStylePath, "https://store.example")

	key, err := l.URLToKey("https://store.example/mybucket/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "abc123.png", key)

	key, err = l.URLToKey("https://store.example/mybucket/workoutImage/abc.png?x=1")
	require.NoError(t, err)
	assert.Equal(t, "workoutImage/abc.png", key)

	assert.Equal(t, "https://store.example/mybucket/workoutImage/abc.png", l.KeyToURL("workoutImage/abc.png"))

	for _, raw := range []string{
		"not-a-url",
		"",
		"ftp://store.example/mybucket/a.png",
		"https://store.example/otherbucket/a.png",
		"https://store.example/mybucket/",
		"https://store.example/mybucket/../secret",
		"/mybucket/a.png",
	} {
		_, err := l.URLToKey(raw)
		assert.ErrorIs(t, err, ErrMalformedURL, raw)
	}
}

func TestVirtualHostResolver(t *testing.T) {
	l := locatorFor(t, config.URLStyleVirtualHost, "https://s3.example.com")

	key, err := l.URLToKey("https://mybucket.s3.example.com/profileImage/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "profileImage/x.jpg", key)
	assert.Equal(t, "https://mybucket.s3.example.com/profileImage/x.jpg", l.KeyToURL("profileImage/x.jpg"))

	_, err = l.URLToKey("https://s3.example.com/mybucket/x.jpg")
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestPrefixResolver(t *testing.T) {
	l := locatorFor(t, config.URLStylePrefix, "https://cdn.example/media/")

	key, err := l.URLToKey("https://cdn.example/media/imageUploader/a.webp")
	require.NoError(t, err)
	assert.Equal(t, "imageUploader/a.webp", key)
	assert.Equal(t, "https://cdn.example/media/imageUploader/a.webp", l.KeyToURL("imageUploader/a.webp"))

	_, err = l.URLToKey("https://other.example/media/a.webp")
	assert.ErrorIs(t, err, ErrMalformedURL)
	_, err = l.URLToKey("https://cdn.example/assets/a.webp")
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestNewAssetLocator_Invalid(t *testing.T) {
	env := &config.EnvConfig{}
	env.Storage.PublicURL = "store.example"
	env.Storage.URLStyle = config.URLStylePath
	_, err := NewAssetLocator(env)
	assert.Error(t, err)

	env.Storage.PublicURL = "https://store.example"
	env.Storage.URLStyle = "weird"
	_, err = NewAssetLocator(env)
	assert.Error(t, err)
}
