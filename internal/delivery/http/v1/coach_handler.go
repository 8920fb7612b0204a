package v1

import (
	"context"
	"errors"
	"net/http"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"
	"skillsprint/internal/usecase"
	"skillsprint/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	coachUC domain.CoachUsecase
}

func NewCoachHandler(student *gin.RouterGroup, aiLimit gin.HandlerFunc, coachUC domain.CoachUsecase) {
	handler := &CoachHandler{coachUC: coachUC}

	coach := student.Group("/coach")
	{
		coach.GET("", handler.Transcript)
		coach.POST("/messages", aiLimit, handler.SendMessage)
		coach.DELETE("", handler.Clear)
	}
}

type coachView struct {
	Messages           []domain.Message `json:"messages"`
	SuggestedQuestions []string         `json:"suggested_questions,omitempty"`
}

func newCoachView(msgs []domain.Message) coachView {
	v := coachView{Messages: msgs}
	if len(msgs) <= 1 {
		v.SuggestedQuestions = usecase.SuggestedQuestions
	}
	return v
}

// Transcript godoc
// @Summary      AI coach transcript
// @Tags         coach
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /student/coach [get]
func (h *CoachHandler) Transcript(c *gin.Context) {
	msgs, err := h.coachUC.Transcript(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", newCoachView(msgs))
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// SendMessage godoc
// @Summary      Ask the AI coach
// @Description  Streams server-sent "message" events carrying the reply so far, then a "done" event with the transcript
// @Tags         coach
// @Accept       json
// @Produce      text/event-stream
// @Param        message  body      sendMessageRequest  true  "Message"
// @Success      200      {string}  string  "event stream"
// @Failure      400      {object}  response.Response
// @Router       /student/coach/messages [post]
func (h *CoachHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	streaming := false
	start := func() {
		if streaming {
			return
		}
		streaming = true
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
	}

	msgs, err := h.coachUC.SendMessage(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req.Content, func(partial string) {
		start()
		c.SSEvent("message", gin.H{"text": partial})
		c.Writer.Flush()
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The client went away.
			return
		}
		if !streaming {
			c.Error(err)
			return
		}
		logger.Log.Error("AI coach turn failed", "error", err)
		c.SSEvent("error", gin.H{"message": "Something went wrong. Please try again."})
		c.Writer.Flush()
		return
	}

	start()
	c.SSEvent("done", newCoachView(msgs))
	c.Writer.Flush()
}

// Clear godoc
// @Summary      Clear the transcript
// @Tags         coach
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /student/coach [delete]
func (h *CoachHandler) Clear(c *gin.Context) {
	msgs, err := h.coachUC.Clear(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Conversation cleared", newCoachView(msgs))
}
