package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"skillsprint/internal/domain"
	"skillsprint/internal/objectstore"
	"skillsprint/internal/usecase"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProfileImageUsecase(t *testing.T) {
	meta := domain.RequestMeta{IP: "10.0.0.1", RequestID: "req-1"}

	t.Run("Should downscale to a JPEG and store its URL", func(t *testing.T) {
		var stored []byte
		uploader := new(MockUploader)
		uploader.On("Upload", mock.Anything, mock.MatchedBy(func(o objectstore.Object) bool {
			return o.Folder == "avatars/u1" && o.Filename == "avatar.jpg" && o.ContentType == "image/jpeg"
		})).Run(func(args mock.Arguments) {
			stored = args.Get(1).(objectstore.Object).Data
		}).Return("https://cdn/avatar.jpg", nil)
		profiles := new(MockProfileRepo)
		profiles.On("UpdateProfileImage", mock.Anything, "u1", "https://cdn/avatar.jpg").Return(nil)
		uc := usecase.NewProfileImageUsecase(profiles, uploader, nil, nil, nil)

		url, err := uc.UploadImage(context.Background(), "u1", domain.FileUpload{Filename: "me.png", Data: pngOf(t, 1024, 600)}, meta)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/avatar.jpg", url)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(stored))
		require.NoError(t, err)
		assert.Equal(t, 512, cfg.Width)
		assert.Equal(t, 300, cfg.Height)
		profiles.AssertExpectations(t)
	})

	t.Run("Should reject files that are not images", func(t *testing.T) {
		uploader := new(MockUploader)
		uc := usecase.NewProfileImageUsecase(new(MockProfileRepo), uploader, nil, nil, nil)

		_, err := uc.UploadImage(context.Background(), "u1", domain.FileUpload{Filename: "me.pdf", Data: []byte("%PDF-1.4 fake")}, meta)
		assert.Equal(t, http.StatusBadRequest, appCode(t, err))
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("Should refuse uploads over the rate limit", func(t *testing.T) {
		limiter := new(MockLimiter)
		limiter.On("AllowUpload", mock.Anything, "10.0.0.1", "u1").Return(false, 60, nil)
		uc := usecase.NewProfileImageUsecase(new(MockProfileRepo), new(MockUploader), limiter, nil, nil)

		_, err := uc.UploadImage(context.Background(), "u1", domain.FileUpload{Filename: "me.png", Data: pngOf(t, 8, 8)}, meta)
		assert.Equal(t, http.StatusTooManyRequests, appCode(t, err))
	})

	t.Run("Should leave the profile alone when storage fails", func(t *testing.T) {
		uploader := new(MockUploader)
		uploader.On("Upload", mock.Anything, mock.Anything).Return("", objectstore.ErrUploadRejected)
		profiles := new(MockProfileRepo)
		uc := usecase.NewProfileImageUsecase(profiles, uploader, nil, nil, nil)

		_, err := uc.UploadImage(context.Background(), "u1", domain.FileUpload{Filename: "me.png", Data: pngOf(t, 8, 8)}, meta)
		assert.Equal(t, http.StatusBadGateway, appCode(t, err))
		profiles.AssertNotCalled(t, "UpdateProfileImage", mock.Anything, mock.Anything, mock.Anything)
	})
}
