package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"time"

	"breeze-chat/internal/domain/user"
	breeze_errors "breeze-chat/pkg/errors"
)

// Uploader is the remote object storage collaborator.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	FileURL(key string) string
}

// AvatarService renders default avatars and pushes avatar images to remote
// storage, returning public URLs.
type AvatarService struct {
	uploader Uploader
	size     int
}

func NewAvatarService(uploader Uploader, size int) *AvatarService {
	if size <= 0 {
		size = 64
	}
	return &AvatarService{uploader: uploader, size: size}
}

// CreateDefault renders the identicon for a new account, keyed by username
// and gender, uploads it, and returns its public URL.
func (s *AvatarService) CreateDefault(ctx context.Context, username, gender string) (string, error) {
	img := renderIdenticon(username, gender, s.size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	key := fmt.Sprintf("user_default_avatar_%d.png", time.Now().UnixMilli())
	key, err := s.uploader.Upload(ctx, key, buf.Bytes(), "image/png")
	if err != nil {
		return "", err
	}
	return s.uploader.FileURL(key), nil
}

// SaveImage uploads caller-supplied avatar bytes under name and returns the
// public URL.
func (s *AvatarService) SaveImage(ctx context.Context, name string, data []byte, subtype string) (string, error) {
	key, err := s.uploader.Upload(ctx, name, data, "image/"+subtype)
	if err != nil {
		return "", err
	}
	return s.uploader.FileURL(key), nil
}

var imageDataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

// ParseImageDataURI splits a data:image/...;base64 payload into its declared
// subtype and raw bytes.
func ParseImageDataURI(uri string) (string, []byte, error) {
	m := imageDataURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", nil, breeze_errors.ErrInvalidInput
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, breeze_errors.ErrInvalidInput
	}
	return m[1], data, nil
}

const identiconGrid = 5

// renderIdenticon draws a deterministic, horizontally mirrored block pattern
// from a hash of the seed. The palette shifts with gender so the two default
// styles are visually distinct.
func renderIdenticon(seed, gender string, size int) *image.RGBA {
	sum := sha256.Sum256([]byte(seed + "|" + gender))

	fg := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}
	var bg color.RGBA
	if gender == user.GenderFemale {
		bg = color.RGBA{R: 250, G: 235, B: 240, A: 255}
	} else {
		bg = color.RGBA{R: 235, G: 242, B: 250, A: 255}
	}

	cell := size / identiconGrid
	if cell == 0 {
		cell = 1
		size = identiconGrid
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, bg)
		}
	}

	for row := 0; row < identiconGrid; row++ {
		// mirror the left half onto the right
		for col := 0; col <= identiconGrid/2; col++ {
			bit := sum[3+row] >> uint(col) & 1
			if bit == 0 {
				continue
			}
			fillCell(img, col, row, cell, fg)
			fillCell(img, identiconGrid-1-col, row, cell, fg)
		}
	}
	return img
}

func fillCell(img *image.RGBA, col, row, cell int, c color.RGBA) {
	for y := row * cell; y < (row+1)*cell; y++ {
		for x := col * cell; x < (col+1)*cell; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
