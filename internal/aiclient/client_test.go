package aiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillsprint/internal/aiclient"
	"skillsprint/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *aiclient.ChatStream) ([]string, error) {
	t.Helper()
	defer s.Close()
	var parts []string
	for s.Next() {
		parts = append(parts, s.Text())
	}
	return parts, s.Err()
}

func TestHistory(t *testing.T) {
	turns := aiclient.History([]domain.Message{
		{ID: "1", Content: "Hi!", Sender: domain.SenderAI},
		{ID: "2", Content: "How do I learn Go?", Sender: domain.SenderUser},
	})
	assert.Equal(t, []aiclient.ChatTurn{
		{Role: "model", Text: "Hi!"},
		{Role: "user", Text: "How do I learn Go?"},
	}, turns)
}

func TestChat(t *testing.T) {
	ctx := context.Background()

	t.Run("Should stream fragments in order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat", r.URL.Path)
			var body struct {
				Messages []aiclient.ChatTurn `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user", body.Messages[0].Role)

			flusher := w.(http.Flusher)
			for _, part := range []string{"Start ", "with ", "the tour."} {
				_, _ = w.Write([]byte(part))
				flusher.Flush()
			}
		}))
		defer srv.Close()

		c := aiclient.New(srv.URL, 5*time.Second, nil)
		s, err := c.Chat(ctx, []aiclient.ChatTurn{{Role: "user", Text: "Go?"}})
		require.NoError(t, err)

		parts, err := collect(t, s)
		require.NoError(t, err)
		assert.Equal(t, "Start with the tour.", strings.Join(parts, ""))
	})

	t.Run("Should not split multi-byte characters across fragments", func(t *testing.T) {
		reply := "Olá, 世界 👋"
		raw := []byte(reply)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			for i := range raw {
				_, _ = w.Write(raw[i : i+1])
				flusher.Flush()
			}
		}))
		defer srv.Close()

		s, err := aiclient.New(srv.URL, 5*time.Second, nil).Chat(ctx, nil)
		require.NoError(t, err)

		parts, err := collect(t, s)
		require.NoError(t, err)
		for _, p := range parts {
			assert.True(t, strings.ToValidUTF8(p, "?") == p, "fragment %q is not valid UTF-8", p)
		}
		assert.Equal(t, reply, strings.Join(parts, ""))
	})

	t.Run("Should yield nothing for an empty body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		s, err := aiclient.New(srv.URL, 5*time.Second, nil).Chat(ctx, nil)
		require.NoError(t, err)

		parts, err := collect(t, s)
		require.NoError(t, err)
		assert.Empty(t, parts)
	})

	t.Run("Should fail on a non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := aiclient.New(srv.URL, 5*time.Second, nil).Chat(ctx, nil)
		var serr *aiclient.StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusInternalServerError, serr.Status)
	})

	t.Run("Should keep streaming past the request timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			for _, part := range []string{"slow ", "but ", "complete"} {
				_, _ = w.Write([]byte(part))
				flusher.Flush()
				time.Sleep(60 * time.Millisecond)
			}
		}))
		defer srv.Close()

		s, err := aiclient.New(srv.URL, 50*time.Millisecond, nil).Chat(ctx, nil)
		require.NoError(t, err)

		parts, err := collect(t, s)
		require.NoError(t, err)
		assert.Equal(t, "slow but complete", strings.Join(parts, ""))
	})

	t.Run("Should give up when the response never starts", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := aiclient.New(srv.URL, 50*time.Millisecond, nil).Chat(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("Should stop when the context is cancelled", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("first"))
			w.(http.Flusher).Flush()
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		cctx, cancel := context.WithCancel(ctx)
		s, err := aiclient.New(srv.URL, 5*time.Second, nil).Chat(cctx, nil)
		require.NoError(t, err)
		defer s.Close()

		require.True(t, s.Next())
		assert.Equal(t, "first", s.Text())

		cancel()
		assert.False(t, s.Next())
		assert.ErrorIs(t, s.Err(), context.Canceled)
	})
}

func TestNewResumeRequest(t *testing.T) {
	t.Run("Should prefer the resume url over pasted text", func(t *testing.T) {
		req, err := aiclient.NewResumeRequest([]string{"Backend"}, "https://cdn/resume.pdf", "pasted", "")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/resume.pdf", req.ResumeURL)
		assert.Empty(t, req.ResumeText)

		raw, err := json.Marshal(req)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "resumeText")
		assert.NotContains(t, string(raw), "jobDescription")
	})

	t.Run("Should use pasted text when no url is given", func(t *testing.T) {
		req, err := aiclient.NewResumeRequest(nil, "", "John Doe, Developer", "  Go engineer  ")
		require.NoError(t, err)
		assert.Equal(t, "John Doe, Developer", req.ResumeText)
		assert.Equal(t, "  Go engineer  ", req.JobDescription)
		assert.Equal(t, []string{}, req.Interests)
	})

	t.Run("Should reject a request without resume", func(t *testing.T) {
		_, err := aiclient.NewResumeRequest(nil, "", "   ", "jd")
		assert.ErrorIs(t, err, aiclient.ErrNoResume)
	})

	t.Run("Should drop a blank job description", func(t *testing.T) {
		req, err := aiclient.NewResumeRequest(nil, "u", "", " \n ")
		require.NoError(t, err)
		assert.Empty(t, req.JobDescription)
	})
}

func TestAnalyzeResume(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the feedback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/resume-analysis", r.URL.Path)
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "https://cdn/r.pdf", body["resumeUrl"])
			_, hasText := body["resumeText"]
			assert.False(t, hasText)
			_, _ = w.Write([]byte(`{"feedback":"Quantify your impact."}`))
		}))
		defer srv.Close()

		req, _ := aiclient.NewResumeRequest([]string{"AI"}, "https://cdn/r.pdf", "ignored", "")
		fb, err := aiclient.New(srv.URL, time.Second, nil).AnalyzeResume(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Quantify your impact.", fb)
	})

	t.Run("Should report missing feedback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		req, _ := aiclient.NewResumeRequest(nil, "u", "", "")
		_, err := aiclient.New(srv.URL, time.Second, nil).AnalyzeResume(ctx, req)
		assert.ErrorIs(t, err, aiclient.ErrEmptyFeedback)
	})
}

func TestRecommendCourses(t *testing.T) {
	ctx := context.Background()

	t.Run("Should send id and description pairs and default the title", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Interests []string                 `json:"interests"`
				Courses   []map[string]interface{} `json:"courses"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"Cybersecurity"}, body.Interests)
			require.Len(t, body.Courses, 1)
			assert.Equal(t, map[string]interface{}{"id": "c1", "description": "Intro"}, body.Courses[0])
			_, _ = w.Write([]byte(`{"recommendedCourseIds":["c1"]}`))
		}))
		defer srv.Close()

		rec, err := aiclient.New(srv.URL, time.Second, nil).RecommendCourses(ctx,
			[]string{"Cybersecurity"}, []domain.CourseSummary{{ID: "c1", Description: "Intro"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, rec.CourseIDs)
		assert.Equal(t, aiclient.DefaultRecommendationTitle, rec.Title)
		assert.Equal(t, []string{}, rec.Skills)
	})

	t.Run("Should fail when the backend is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := aiclient.New(url, time.Second, nil).RecommendCourses(ctx, nil, nil)
		assert.Error(t, err)
	})
}
