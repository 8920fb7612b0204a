package v1

import (
	"net/http"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"

	"github.com/gin-gonic/gin"
)

const maxImageUpload = 5 << 20

type ProfileHandler struct {
	imageUC domain.ProfileImageUsecase
}

func NewProfileHandler(signedIn *gin.RouterGroup, imageUC domain.ProfileImageUsecase) {
	handler := &ProfileHandler{imageUC: imageUC}
	signedIn.POST("/profile/image", handler.UploadImage)
}

// UploadImage godoc
// @Summary      Upload profile image
// @Description  jpg, png, gif or webp; stored as a JPEG of at most 512px
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /profile/image [post]
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	file, err := readUpload(c, "file", maxImageUpload)
	if err != nil {
		c.Error(err)
		return
	}

	url, err := h.imageUC.UploadImage(c.Request.Context(), c.GetString(string(domain.KeyUserID)), file, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Profile image updated", gin.H{"profile_image": url})
}
