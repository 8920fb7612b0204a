package v1

import (
	"net/http"
	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"

	"github.com/gin-gonic/gin"
)

const maxResumeUpload = 10 << 20

type StudentHandler struct {
	dashboardUC domain.DashboardUsecase
	careerUC    domain.CareerUsecase
	resumeUC    domain.ResumeUsecase
}

func NewStudentHandler(student *gin.RouterGroup, aiLimit gin.HandlerFunc, dashboardUC domain.DashboardUsecase, careerUC domain.CareerUsecase, resumeUC domain.ResumeUsecase) {
	handler := &StudentHandler{
		dashboardUC: dashboardUC,
		careerUC:    careerUC,
		resumeUC:    resumeUC,
	}

	student.GET("", handler.Dashboard)

	career := student.Group("/career-path")
	{
		career.GET("", handler.CareerPath)
		career.POST("/answers", aiLimit, handler.SubmitAnswers)
		career.POST("/refresh", aiLimit, handler.RefreshRecommendation)
		career.DELETE("", handler.ResetQuiz)
	}

	resume := student.Group("/resume")
	{
		resume.GET("", handler.Resume)
		resume.POST("/upload", handler.UploadResume)
		resume.POST("/analyze", aiLimit, handler.AnalyzeResume)
	}
}

// Dashboard godoc
// @Summary      Student dashboard
// @Tags         student
// @Produce      json
// @Success      200  {object}  response.Response
// @Success      202  {object}  response.Navigation
// @Success      303  {object}  response.Navigation
// @Router       /student [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboardUC.Student(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", d)
}

// CareerPath godoc
// @Summary      Career path
// @Description  The quiz until it is answered, then the recommended path
// @Tags         student
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /student/career-path [get]
func (h *StudentHandler) CareerPath(c *gin.Context) {
	view, err := h.careerUC.View(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", view)
}

type quizAnswersRequest struct {
	Answers []string `json:"answers" binding:"required,max=10,dive,max=200"`
}

// SubmitAnswers godoc
// @Summary      Submit quiz answers
// @Tags         student
// @Accept       json
// @Produce      json
// @Param        answers  body      quizAnswersRequest  true  "One answer per question"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /student/career-path/answers [post]
func (h *StudentHandler) SubmitAnswers(c *gin.Context) {
	var req quizAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	view, err := h.careerUC.SubmitAnswers(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req.Answers)
	if err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Answers saved", view)
}

// RefreshRecommendation godoc
// @Summary      Refresh recommendation
// @Tags         student
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /student/career-path/refresh [post]
func (h *StudentHandler) RefreshRecommendation(c *gin.Context) {
	view, err := h.careerUC.Refresh(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Recommendation refreshed", view)
}

// ResetQuiz godoc
// @Summary      Retake the quiz
// @Tags         student
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /student/career-path [delete]
func (h *StudentHandler) ResetQuiz(c *gin.Context) {
	if err := h.careerUC.Reset(c.Request.Context(), c.GetString(string(domain.KeyUserID))); err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Quiz reset", nil)
}

// Resume godoc
// @Summary      Resume analyzer
// @Tags         student
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /student/resume [get]
func (h *StudentHandler) Resume(c *gin.Context) {
	view, err := h.resumeUC.View(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", view)
}

// UploadResume godoc
// @Summary      Upload resume
// @Tags         student
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "pdf, doc, docx or txt"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /student/resume/upload [post]
func (h *StudentHandler) UploadResume(c *gin.Context) {
	file, err := readUpload(c, "file", maxResumeUpload)
	if err != nil {
		c.Error(err)
		return
	}

	url, err := h.resumeUC.Upload(c.Request.Context(), c.GetString(string(domain.KeyUserID)), file, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Resume uploaded", gin.H{"resume_url": url})
}

// AnalyzeResume godoc
// @Summary      Analyze resume
// @Description  Feedback on the uploaded resume, or on pasted text when none was uploaded
// @Tags         student
// @Accept       json
// @Produce      json
// @Param        input  body      domain.ResumeAnalysisInput  true  "Resume"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /student/resume/analyze [post]
func (h *StudentHandler) AnalyzeResume(c *gin.Context) {
	var req domain.ResumeAnalysisInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	feedback, err := h.resumeUC.Analyze(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", gin.H{"feedback": feedback})
}
