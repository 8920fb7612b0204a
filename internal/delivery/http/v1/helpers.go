package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/domain"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func requestMeta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{IP: c.ClientIP(), RequestID: c.GetString("RequestID")}
}

// bindError keeps validator errors for ErrorHandler to format and turns
// everything else into a plain 400.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return err
	}
	return apperror.BadRequest("Invalid request body")
}

// reloadSession refreshes the session's profile after a profile write.
func reloadSession(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return
	}
	if err := sess.Reload(c.Request.Context()); err != nil {
		logger.Log.Warn("Failed to reload session profile", "session_id", sess.ID, "error", err)
	}
}

// readUpload reads one multipart file, at most limit+1 bytes so the use
// case can reject oversize files.
func readUpload(c *gin.Context, field string, limit int64) (domain.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return domain.FileUpload{}, apperror.BadRequest("File is required")
	}
	return readFileHeader(fh, limit)
}

func readFileHeader(fh *multipart.FileHeader, limit int64) (domain.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.FileUpload{}, apperror.BadRequest("File could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return domain.FileUpload{}, apperror.BadRequest("File could not be read")
	}
	return domain.FileUpload{Filename: fh.Filename, Data: data}, nil
}
