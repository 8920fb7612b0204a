package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Navigation is the body of a redirect or a not-yet-ready view.
type Navigation struct {
	State    string `json:"state"`
	Location string `json:"location,omitempty"`
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string)
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}

// Redirect answers with Location set and the target repeated in the body
// for clients that do not follow redirects.
func Redirect(c *gin.Context, code int, location string) {
	c.Header("Location", location)
	c.JSON(code, Navigation{State: "redirect", Location: location})
}

// Loading tells the client to retry shortly.
func Loading(c *gin.Context, code int) {
	c.Header("Retry-After", "1")
	c.JSON(code, Navigation{State: "loading"})
}
