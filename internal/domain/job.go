package domain

import (
	"context"
	"time"
)

type JobType string

const (
	JobTypeInternship JobType = "internship"
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
)

var JobTypes = []JobType{JobTypeInternship, JobTypeFullTime, JobTypePartTime, JobTypeContract}

func (t JobType) Valid() bool {
	for _, v := range JobTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Type           JobType   `json:"type"`
	Remote         bool      `json:"remote"`
	Salary         string    `json:"salary,omitempty"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	SkillsRequired []string  `json:"skills_required"`
	RecruiterID    string    `json:"recruiter_id"`
	Applicants     []string  `json:"applicants"`
	CreatedAt      time.Time `json:"created_at"`
}

// JobFilter narrows the public listing. Zero values mean "no filter".
type JobFilter struct {
	Query      string
	Type       JobType
	RemoteOnly bool
	Limit      int
	Offset     int
}

type JobRepository interface {
	// Create stores the job and records its id on the recruiter's profile.
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	FetchByRecruiter(ctx context.Context, recruiterID string) ([]Job, error)
	Search(ctx context.Context, filter JobFilter) ([]Job, int64, error)
}

type JobUsecase interface {
	PostJob(ctx context.Context, recruiterID string, req PostJobRequest) (*Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	ListByRecruiter(ctx context.Context, recruiterID string) ([]Job, error)
	Search(ctx context.Context, filter JobFilter, page, pageSize int) ([]Job, int64, error)
	Bookmark(ctx context.Context, studentID, jobID string) error
	RemoveBookmark(ctx context.Context, studentID, jobID string) error
	// Export renders the recruiter's jobs as an xlsx workbook.
	Export(ctx context.Context, recruiterID string) ([]byte, string, error)
}

// PostJobRequest is the recruiter's job form.
type PostJobRequest struct {
	Title          string   `json:"title" binding:"required,max=200,no_emoji"`
	Company        string   `json:"company" binding:"required,max=200"`
	Location       string   `json:"location" binding:"required,max=200"`
	Type           JobType  `json:"type" binding:"required,job_type"`
	Remote         bool     `json:"remote"`
	Salary         string   `json:"salary" binding:"max=100"`
	Description    string   `json:"description" binding:"required,max=10000"`
	Requirements   string   `json:"requirements" binding:"required,max=10000"`
	SkillsRequired []string `json:"skills_required" binding:"max=50,dive,max=60"`
}
