package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"skillsprint/pkg/logger"
	"time"
)

// Cloudinary uploads with an unsigned upload preset, the same way a browser
// would post a form to the upload endpoint.
type Cloudinary struct {
	uploadURL string
	preset    string
	client    *http.Client
	now       func() time.Time
}

func NewCloudinary(uploadURL, preset string) *Cloudinary {
	return &Cloudinary{
		uploadURL: uploadURL,
		preset:    preset,
		client:    &http.Client{Timeout: 60 * time.Second},
		now:       time.Now,
	}
}

func (c *Cloudinary) Upload(ctx context.Context, obj Object) (string, error) {
	if c.uploadURL == "" {
		return "", fmt.Errorf("objectstore: cloudinary upload url not configured")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("upload_preset", c.preset); err != nil {
		return "", err
	}
	if obj.Folder != "" {
		if err := w.WriteField("folder", obj.Folder); err != nil {
			return "", err
		}
	}
	part, err := w.CreateFormFile("file", sanitizeFilename(obj.Filename))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(obj.Data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("objectstore: cloudinary upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("objectstore: read cloudinary response: %w", err)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode >= 300 || out.SecureURL == "" {
		logger.Log.Error("Cloudinary upload failed", "status", resp.StatusCode, "message", out.Error.Message)
		return "", fmt.Errorf("%w: status %d", ErrUploadRejected, resp.StatusCode)
	}
	return out.SecureURL, nil
}
