package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"breeze-chat/internal/domain/user"
	breeze_errors "breeze-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUploader struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemUploader() *memUploader {
	return &memUploader{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memUploader) Upload(_ context.Context, key string, body []byte, contentType string) (string, error) {
	m.objects[key] = body
	m.types[key] = contentType
	return key, nil
}

func (m *memUploader) FileURL(key string) string {
	return "https://cdn.test/" + key
}

func TestCreateDefaultUploadsPNG(t *testing.T) {
	up := newMemUploader()
	s := NewAvatarService(up, 64)

	url, err := s.CreateDefault(context.Background(), "alice", user.GenderFemale)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/user_default_avatar_"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	require.Len(t, up.objects, 1)
	for key, body := range up.objects {
		assert.Equal(t, "image/png", up.types[key])
		img, err := png.Decode(bytes.NewReader(body))
		require.NoError(t, err)
		bounds := img.Bounds()
		assert.Equal(t, 64, bounds.Dx())
		assert.Equal(t, 64, bounds.Dy())
	}
}

func TestRenderIdenticonDeterministic(t *testing.T) {
	a := renderIdenticon("alice", user.GenderMale, 64)
	b := renderIdenticon("alice", user.GenderMale, 64)
	assert.Equal(t, a.Pix, b.Pix, "same seed must render identically")

	c := renderIdenticon("alice", user.GenderFemale, 64)
	assert.NotEqual(t, a.Pix, c.Pix, "gender must change the rendering")

	d := renderIdenticon("bob", user.GenderMale, 64)
	assert.NotEqual(t, a.Pix, d.Pix, "seed must change the rendering")
}

func TestParseImageDataURI(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	subtype, data, err := ParseImageDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "png", subtype)
	assert.Equal(t, raw, data)

	_, _, err = ParseImageDataURI("data:image/png;base64,%%%%")
	assert.ErrorIs(t, err, breeze_errors.ErrInvalidInput)

	_, _, err = ParseImageDataURI("not a data uri")
	assert.ErrorIs(t, err, breeze_errors.ErrInvalidInput)

	_, _, err = ParseImageDataURI("data:text/plain;base64,aGk=")
	assert.ErrorIs(t, err, breeze_errors.ErrInvalidInput)
}

func TestSaveImageComposesURL(t *testing.T) {
	up := newMemUploader()
	s := NewAvatarService(up, 64)

	url, err := s.SaveImage(context.Background(), "user_x_1.jpeg", []byte{1, 2, 3}, "jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/user_x_1.jpeg", url)
	assert.Equal(t, "image/jpeg", up.types["user_x_1.jpeg"])
}
