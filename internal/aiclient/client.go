// Package aiclient talks to the AI backend: streamed coach chat, resume
// feedback and course recommendations.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"skillsprint/internal/domain"
	"skillsprint/internal/metrics"
	"skillsprint/pkg/logger"
	"strings"
	"time"
)

// Texts shown in place of an AI answer.
const (
	EmptyChatReply             = "Sorry, I couldn't generate a response."
	ChatErrorReply             = "Sorry, there was an error connecting to the AI Coach."
	NoFeedbackReply            = "No feedback received."
	ResumeErrorReply           = "Error analyzing resume."
	DefaultRecommendationTitle = "Recommended Career Path"
)

var (
	ErrNoResume      = errors.New("aiclient: neither resume url nor resume text given")
	ErrEmptyFeedback = errors.New("aiclient: backend returned no feedback")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Operation string
	Status    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("aiclient: %s returned status %d", e.Operation, e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
	// stream only bounds the wait for response headers; a chat reply may
	// keep streaming for as long as the request context allows.
	stream  *http.Client
	metrics metrics.Recorder
}

func New(baseURL string, timeout time.Duration, rec metrics.Recorder) *Client {
	if rec == nil {
		rec = metrics.Nop{}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{Transport: transport},
		metrics: rec,
	}
}

// ChatTurn is one history entry in the backend's wire format.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// History maps a transcript to chat turns: user stays user, ai becomes model.
func History(messages []domain.Message) []ChatTurn {
	turns := make([]ChatTurn, 0, len(messages))
	for _, m := range messages {
		role := "model"
		if m.Sender == domain.SenderUser {
			role = "user"
		}
		turns = append(turns, ChatTurn{Role: role, Text: m.Content})
	}
	return turns
}

// Chat sends the full history and returns the streamed reply. The caller
// must Close the stream.
func (c *Client) Chat(ctx context.Context, history []ChatTurn) (*ChatStream, error) {
	start := time.Now()
	resp, err := c.post(ctx, c.stream, "/chat", map[string]interface{}{"messages": history})
	if err != nil {
		c.metrics.RecordAIRequest("chat", "error", time.Since(start))
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		closeBody(resp.Body)
		c.metrics.RecordAIRequest("chat", "error", time.Since(start))
		return nil, &StatusError{Operation: "chat", Status: resp.StatusCode}
	}
	return newChatStream(ctx, resp.Body, func(outcome string) {
		c.metrics.RecordAIRequest("chat", outcome, time.Since(start))
	}), nil
}

// ResumeRequest is the resume-analysis payload. Exactly one of ResumeURL
// and ResumeText is set.
type ResumeRequest struct {
	Interests      []string `json:"interests"`
	ResumeURL      string   `json:"resumeUrl,omitempty"`
	ResumeText     string   `json:"resumeText,omitempty"`
	JobDescription string   `json:"jobDescription,omitempty"`
}

// NewResumeRequest prefers the uploaded resume over pasted text and drops a
// blank job description.
func NewResumeRequest(interests []string, resumeURL, resumeText, jobDescription string) (ResumeRequest, error) {
	if interests == nil {
		interests = []string{}
	}
	req := ResumeRequest{Interests: interests}
	switch {
	case resumeURL != "":
		req.ResumeURL = resumeURL
	case strings.TrimSpace(resumeText) != "":
		req.ResumeText = resumeText
	default:
		return ResumeRequest{}, ErrNoResume
	}
	if strings.TrimSpace(jobDescription) != "" {
		req.JobDescription = jobDescription
	}
	return req, nil
}

func (c *Client) AnalyzeResume(ctx context.Context, req ResumeRequest) (string, error) {
	var out struct {
		Feedback string `json:"feedback"`
	}
	if err := c.postJSON(ctx, "resume-analysis", "/resume-analysis", req, &out); err != nil {
		return "", err
	}
	if out.Feedback == "" {
		return "", ErrEmptyFeedback
	}
	return out.Feedback, nil
}

// RecommendCourses asks for courses matching the interests. A missing title
// is filled with DefaultRecommendationTitle.
func (c *Client) RecommendCourses(ctx context.Context, interests []string, catalog []domain.CourseSummary) (domain.Recommendation, error) {
	if interests == nil {
		interests = []string{}
	}
	if catalog == nil {
		catalog = []domain.CourseSummary{}
	}
	body := map[string]interface{}{
		"interests": interests,
		"courses":   catalog,
	}

	var out struct {
		RecommendedCourseIDs []string `json:"recommendedCourseIds"`
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		Skills               []string `json:"skills"`
	}
	if err := c.postJSON(ctx, "recommend-courses", "/recommend-courses", body, &out); err != nil {
		return domain.Recommendation{}, err
	}

	rec := domain.Recommendation{
		CourseIDs:   out.RecommendedCourseIDs,
		Title:       out.Title,
		Description: out.Description,
		Skills:      out.Skills,
	}
	if rec.CourseIDs == nil {
		rec.CourseIDs = []string{}
	}
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if rec.Title == "" {
		rec.Title = DefaultRecommendationTitle
	}
	return rec, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out interface{}) error {
	start := time.Now()
	outcome := "error"
	defer func() { c.metrics.RecordAIRequest(op, outcome, time.Since(start)) }()

	resp, err := c.post(ctx, c.http, path, body)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Operation: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("aiclient: decode %s response: %w", op, err)
	}
	outcome = "ok"
	return nil
}

func (c *Client) post(ctx context.Context, hc *http.Client, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aiclient: POST %s: %w", path, err)
	}
	return resp, nil
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		logger.Log.Warn("Failed to close AI backend response body", "error", err)
	}
}
