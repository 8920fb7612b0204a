package usecase

import (
	"context"
	"skillsprint/internal/domain"
	"skillsprint/internal/metrics"
	"skillsprint/internal/objectstore"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
	"skillsprint/pkg/security"
)

const (
	maxImageSize     = 5 << 20
	profileImageSize = 512
	profileImageQual = 85
)

type profileImageUsecase struct {
	profiles domain.ProfileRepository
	uploader objectstore.Uploader
	limiter  UploadLimiter
	audit    *security.SecurityLogger
	metrics  metrics.Recorder
}

func NewProfileImageUsecase(profiles domain.ProfileRepository, uploader objectstore.Uploader, limiter UploadLimiter, audit *security.SecurityLogger, rec metrics.Recorder) domain.ProfileImageUsecase {
	if audit == nil {
		audit = security.NopSecurityLogger()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &profileImageUsecase{
		profiles: profiles,
		uploader: uploader,
		limiter:  limiter,
		audit:    audit,
		metrics:  rec,
	}
}

// UploadImage downsizes the picture to a JPEG of at most 512px per side
// before storing it.
func (u *profileImageUsecase) UploadImage(ctx context.Context, userID string, file domain.FileUpload, meta domain.RequestMeta) (string, error) {
	if err := checkUpload(ctx, u.limiter, u.audit, userID, meta); err != nil {
		u.metrics.RecordUpload("image", "limited")
		return "", err
	}
	if len(file.Data) == 0 {
		return "", apperror.BadRequest("File is empty")
	}
	if len(file.Data) > maxImageSize {
		return "", apperror.BadRequest("Image exceeds the 5 MB limit")
	}

	check := security.ValidateFile(security.FileKindImage, file.Filename, file.Data)
	if !check.Valid {
		u.audit.LogUploadRejected(userID, meta.IP, meta.RequestID, check.Error)
		u.metrics.RecordUpload("image", "rejected")
		return "", apperror.BadRequest("Invalid image: " + check.Error)
	}

	jpeg, err := objectstore.ResizeToJPEG(file.Data, profileImageSize, profileImageQual)
	if err != nil {
		u.metrics.RecordUpload("image", "rejected")
		return "", apperror.BadRequest("Image could not be decoded")
	}

	url, err := u.uploader.Upload(ctx, objectstore.Object{
		Folder:      "avatars/" + userID,
		Filename:    "avatar.jpg",
		ContentType: "image/jpeg",
		Data:        jpeg,
	})
	if err != nil {
		u.metrics.RecordUpload("image", "error")
		logger.Log.Error("Profile image upload failed", "user_id", userID, "error", err)
		return "", uploadError(err)
	}

	if err := u.profiles.UpdateProfileImage(ctx, userID, url); err != nil {
		u.metrics.RecordUpload("image", "error")
		return "", storeError(err)
	}
	u.metrics.RecordUpload("image", "ok")
	return url, nil
}
