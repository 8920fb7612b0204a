package v1

import (
	"net/http"
	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"

	"github.com/gin-gonic/gin"
)

type RecruiterHandler struct {
	dashboardUC domain.DashboardUsecase
}

func NewRecruiterHandler(recruiter *gin.RouterGroup, dashboardUC domain.DashboardUsecase) {
	handler := &RecruiterHandler{dashboardUC: dashboardUC}
	recruiter.GET("", handler.Dashboard)
}

// Dashboard godoc
// @Summary      Recruiter dashboard
// @Tags         recruiter
// @Produce      json
// @Success      200  {object}  response.Response
// @Success      303  {object}  response.Navigation
// @Router       /recruiter [get]
func (h *RecruiterHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboardUC.Recruiter(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", d)
}
