package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"skillsprint/internal/aiclient"
	"skillsprint/internal/domain"
	"skillsprint/internal/metrics"
	"skillsprint/internal/objectstore"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
	"skillsprint/pkg/security"
	"strconv"
	"strings"
)

const maxResumeSize = 10 << 20

// Interests sent with a resume when the student has none on record.
var defaultInterests = []string{"React", "Backend", "AI", "Node.js"}

// SampleResume is offered as a starting point for pasted resumes.
const SampleResume = `John Doe
Software Developer

Contact:
Email: john.doe@email.com
Phone: (555) 123-4567
LinkedIn: linkedin.com/in/johndoe
GitHub: github.com/johndoe

Professional Summary:
Passionate full-stack developer with 3+ years of experience building scalable web applications. Proficient in React, Node.js, and modern JavaScript frameworks. Strong problem-solving skills and experience working in agile development environments.

Experience:
Frontend Developer | TechCorp Inc. | 2022 - Present
• Developed responsive web applications using React and TypeScript
• Collaborated with UX/UI designers to implement pixel-perfect designs
• Improved application performance by 40% through code optimization
• Mentored 2 junior developers and conducted code reviews

Junior Developer | StartupXYZ | 2021 - 2022
• Built RESTful APIs using Node.js and Express
• Implemented database schemas with MongoDB
• Participated in agile development processes and daily standups
• Contributed to open-source projects and team documentation

Education:
Bachelor of Computer Science | University of Technology | 2021
Relevant Coursework: Data Structures, Algorithms, Software Engineering

Skills:
• Frontend: React, JavaScript, TypeScript, HTML/CSS, Tailwind CSS
• Backend: Node.js, Express, MongoDB, PostgreSQL
• Tools: Git, Docker, AWS, Jest, Webpack
• Soft Skills: Problem Solving, Team Collaboration, Communication`

// UploadLimiter caps upload frequency per IP and user.
type UploadLimiter interface {
	AllowUpload(ctx context.Context, ip, userID string) (bool, int, error)
}

// ResumeAnalyzer asks the AI backend for resume feedback.
type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, req aiclient.ResumeRequest) (string, error)
}

type resumeUsecase struct {
	profiles domain.ProfileRepository
	uploader objectstore.Uploader
	limiter  UploadLimiter
	analyzer ResumeAnalyzer
	audit    *security.SecurityLogger
	metrics  metrics.Recorder
}

func NewResumeUsecase(profiles domain.ProfileRepository, uploader objectstore.Uploader, limiter UploadLimiter, analyzer ResumeAnalyzer, audit *security.SecurityLogger, rec metrics.Recorder) domain.ResumeUsecase {
	if audit == nil {
		audit = security.NopSecurityLogger()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &resumeUsecase{
		profiles: profiles,
		uploader: uploader,
		limiter:  limiter,
		analyzer: analyzer,
		audit:    audit,
		metrics:  rec,
	}
}

func (u *resumeUsecase) View(ctx context.Context, studentID string) (*domain.ResumeView, error) {
	p, err := u.profiles.GetByID(ctx, studentID)
	if err != nil {
		return nil, storeError(err)
	}
	return &domain.ResumeView{
		ResumeURL:         p.ResumeURL,
		SampleText:        SampleResume,
		AllowedExtensions: security.AllowedExtensions(security.FileKindResume),
	}, nil
}

// Upload validates the file, stores it and records its URL. Nothing is
// written to the profile unless the upload succeeded.
func (u *resumeUsecase) Upload(ctx context.Context, studentID string, file domain.FileUpload, meta domain.RequestMeta) (string, error) {
	if err := checkUpload(ctx, u.limiter, u.audit, studentID, meta); err != nil {
		u.metrics.RecordUpload("resume", "limited")
		return "", err
	}
	if len(file.Data) == 0 {
		return "", apperror.BadRequest("File is empty")
	}
	if len(file.Data) > maxResumeSize {
		return "", apperror.BadRequest("File exceeds the 10 MB limit")
	}

	check := security.ValidateFile(security.FileKindResume, file.Filename, file.Data)
	if !check.Valid {
		u.audit.LogUploadRejected(studentID, meta.IP, meta.RequestID, check.Error)
		u.metrics.RecordUpload("resume", "rejected")
		return "", apperror.BadRequest(fmt.Sprintf("Invalid resume file: %s. Allowed: %s",
			check.Error, strings.Join(security.AllowedExtensions(security.FileKindResume), ", ")))
	}

	url, err := u.uploader.Upload(ctx, objectstore.Object{
		Folder:      "resumes/" + studentID,
		Filename:    file.Filename,
		ContentType: check.DetectedMIME,
		Data:        file.Data,
	})
	if err != nil {
		u.metrics.RecordUpload("resume", "error")
		logger.Log.Error("Resume upload failed", "user_id", studentID, "error", err)
		return "", uploadError(err)
	}

	if err := u.profiles.UpdateResumeURL(ctx, studentID, url); err != nil {
		u.metrics.RecordUpload("resume", "error")
		return "", storeError(err)
	}
	u.metrics.RecordUpload("resume", "ok")
	return url, nil
}

// Analyze returns backend feedback or a placeholder text. A stored resume
// always wins over pasted text. Only a request with neither a resume nor
// text is an error.
func (u *resumeUsecase) Analyze(ctx context.Context, studentID string, in domain.ResumeAnalysisInput) (string, error) {
	p, err := u.profiles.GetByID(ctx, studentID)
	if err != nil {
		return "", storeError(err)
	}

	resumeURL := strings.TrimSpace(in.ResumeURL)
	stored := ""
	if p.ResumeURL != nil {
		stored = *p.ResumeURL
	}
	if resumeURL != "" && resumeURL != stored {
		return "", apperror.BadRequest("Resume URL does not match your uploaded resume")
	}
	if resumeURL == "" {
		resumeURL = stored
	}

	req, err := aiclient.NewResumeRequest(interestsOf(p), resumeURL, in.ResumeText, in.JobDescription)
	if err != nil {
		return "", apperror.BadRequest("Please upload a resume or paste text.")
	}

	feedback, err := u.analyzer.AnalyzeResume(ctx, req)
	switch {
	case err == nil:
		return feedback, nil
	case errors.Is(err, aiclient.ErrEmptyFeedback):
		return aiclient.NoFeedbackReply, nil
	default:
		logger.Log.Warn("Resume analysis failed", "user_id", studentID, "error", err)
		return aiclient.ResumeErrorReply, nil
	}
}

// interestsOf prefers explicit interests, then quiz answers.
func interestsOf(p *domain.Profile) []string {
	if len(p.Interests) > 0 {
		return p.Interests
	}
	if len(p.CareerQuizAnswers) > 0 {
		return p.CareerQuizAnswers
	}
	return defaultInterests
}

func checkUpload(ctx context.Context, limiter UploadLimiter, audit *security.SecurityLogger, userID string, meta domain.RequestMeta) error {
	if limiter == nil {
		return nil
	}
	allowed, retryAfter, err := limiter.AllowUpload(ctx, meta.IP, userID)
	if err != nil {
		logger.Log.Warn("Upload limiter unavailable", "error", err)
	}
	if !allowed {
		audit.LogRateLimitTriggered(meta.IP, meta.RequestID, "upload")
		return apperror.TooManyRequests("Too many uploads. Retry after " + strconv.Itoa(retryAfter) + " seconds.")
	}
	return nil
}

func uploadError(err error) error {
	if errors.Is(err, objectstore.ErrUploadRejected) {
		return apperror.New(http.StatusBadGateway, "The file could not be stored. Please try again.", err)
	}
	return apperror.Internal(err)
}
