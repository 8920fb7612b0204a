package domain

import "context"

// FileUpload is a file received from the browser.
type FileUpload struct {
	Filename string
	Data     []byte
}

type ResumeAnalysisInput struct {
	ResumeURL      string `json:"resume_url"`
	ResumeText     string `json:"resume_text" binding:"max=50000"`
	JobDescription string `json:"job_description" binding:"max=20000"`
}

type ResumeView struct {
	ResumeURL         *string  `json:"resume_url"`
	SampleText        string   `json:"sample_text"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

type ResumeUsecase interface {
	View(ctx context.Context, studentID string) (*ResumeView, error)
	// Upload stores the file and records its URL on the profile.
	Upload(ctx context.Context, studentID string, file FileUpload, meta RequestMeta) (string, error)
	// Analyze always returns displayable feedback unless the input is invalid.
	Analyze(ctx context.Context, studentID string, in ResumeAnalysisInput) (string, error)
}

type ProfileImageUsecase interface {
	UploadImage(ctx context.Context, userID string, file FileUpload, meta RequestMeta) (string, error)
}
