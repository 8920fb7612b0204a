package v1

import (
	"net/http"
	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"
	"strconv"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public, student, recruiter *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	public.GET("/jobs/:jobId", handler.GetDetails)

	student.GET("/jobs", handler.Search)
	student.POST("/jobs/:jobId/bookmark", handler.Bookmark)
	student.DELETE("/jobs/:jobId/bookmark", handler.RemoveBookmark)

	recruiter.GET("/post-job", handler.PostJobForm)
	recruiter.POST("/post-job", handler.Create)
	recruiter.GET("/jobs", handler.ListByRecruiter)
	recruiter.GET("/jobs/export", handler.Export)
}

// GetDetails godoc
// @Summary      Job details
// @Tags         jobs
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /jobs/{jobId} [get]
func (h *JobHandler) GetDetails(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

type jobList struct {
	Jobs       []domain.Job `json:"jobs"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	Bookmarked []string     `json:"bookmarked"`
}

// Search godoc
// @Summary      Browse jobs
// @Description  All jobs newest first, filtered by title, company or skill
// @Tags         student
// @Produce      json
// @Param        q          query     string  false  "Search text"
// @Param        type       query     string  false  "internship, full-time, part-time or contract"
// @Param        remote     query     bool    false  "Remote jobs only"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /student/jobs [get]
func (h *JobHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	remote, _ := strconv.ParseBool(c.Query("remote"))

	filter := domain.JobFilter{
		Query:      c.Query("q"),
		Type:       domain.JobType(c.Query("type")),
		RemoteOnly: remote,
	}
	jobs, total, err := h.jobUC.Search(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	bookmarked := []string{}
	if p := middleware.CurrentProfile(c); p != nil && p.BookmarkedJobs != nil {
		bookmarked = p.BookmarkedJobs
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobList{
		Jobs:       jobs,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		Bookmarked: bookmarked,
	})
}

// Bookmark godoc
// @Summary      Bookmark a job
// @Tags         student
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /student/jobs/{jobId}/bookmark [post]
func (h *JobHandler) Bookmark(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	if err := h.jobUC.Bookmark(c.Request.Context(), userID, c.Param("jobId")); err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Job bookmarked", nil)
}

// RemoveBookmark godoc
// @Summary      Remove a bookmark
// @Tags         student
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response
// @Router       /student/jobs/{jobId}/bookmark [delete]
func (h *JobHandler) RemoveBookmark(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	if err := h.jobUC.RemoveBookmark(c.Request.Context(), userID, c.Param("jobId")); err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusOK, "Bookmark removed", nil)
}

// PostJobForm godoc
// @Summary      Job form defaults
// @Tags         recruiter
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /recruiter/post-job [get]
func (h *JobHandler) PostJobForm(c *gin.Context) {
	company := ""
	if p := middleware.CurrentProfile(c); p != nil {
		company = p.Company
	}
	response.Success(c, http.StatusOK, "OK", gin.H{
		"job_types": domain.JobTypes,
		"company":   company,
	})
}

// Create godoc
// @Summary      Post a job
// @Tags         recruiter
// @Accept       json
// @Produce      json
// @Param        job  body      domain.PostJobRequest  true  "Job"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /recruiter/post-job [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req domain.PostJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	job, err := h.jobUC.PostJob(c.Request.Context(), userID, req)
	if err != nil {
		c.Error(err)
		return
	}
	reloadSession(c)
	response.Success(c, http.StatusCreated, "Job posted", gin.H{"job": job, "redirect": "/recruiter"})
}

// ListByRecruiter godoc
// @Summary      My jobs
// @Tags         recruiter
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /recruiter/jobs [get]
func (h *JobHandler) ListByRecruiter(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	jobs, err := h.jobUC.ListByRecruiter(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

// Export godoc
// @Summary      Export my jobs
// @Description  Downloads the recruiter's jobs as an xlsx workbook
// @Tags         recruiter
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /recruiter/jobs/export [get]
func (h *JobHandler) Export(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	data, filename, err := h.jobUC.Export(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
