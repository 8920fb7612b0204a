package domain

import (
	"context"
	"time"
)

// Profile is the durable user record keyed by the identity id. Student and
// recruiter fields share one record; the fields of the other role stay empty.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	ProfileImage *string   `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`

	// Student
	CareerTrack            *string  `json:"career_track,omitempty"`
	Skills                 []string `json:"skills,omitempty"`
	Interests              []string `json:"interests,omitempty"`
	BookmarkedJobs         []string `json:"bookmarked_jobs,omitempty"`
	CompletedModules       []string `json:"completed_modules,omitempty"`
	CareerQuizAnswers      []string `json:"career_quiz_answers,omitempty"`
	RecommendedCourseIDs   []string `json:"recommended_course_ids,omitempty"`
	RecommendedTitle       string   `json:"recommended_title,omitempty"`
	RecommendedDescription string   `json:"recommended_description,omitempty"`
	RecommendedSkills      []string `json:"recommended_skills,omitempty"`
	Education              *string  `json:"education,omitempty"`
	Experience             *string  `json:"experience,omitempty"`
	ResumeURL              *string  `json:"resume_url,omitempty"`

	// Recruiter
	Company    string   `json:"company,omitempty"`
	Position   *string  `json:"position,omitempty"`
	PostedJobs []string `json:"posted_jobs,omitempty"`
}

// NewProfile seeds a profile for a fresh account: role-specific lists are
// empty, never nil, so they serialize as [] in the document store.
func NewProfile(id, email, name string, role Role, image *string, now time.Time) *Profile {
	p := &Profile{
		ID:           id,
		Email:        email,
		Name:         name,
		Role:         role,
		ProfileImage: image,
		CreatedAt:    now,
	}
	switch role {
	case RoleStudent:
		p.Skills = []string{}
		p.Interests = []string{}
		p.BookmarkedJobs = []string{}
		p.CompletedModules = []string{}
		p.CareerQuizAnswers = []string{}
		p.RecommendedCourseIDs = []string{}
		p.RecommendedSkills = []string{}
	case RoleRecruiter:
		p.PostedJobs = []string{}
	}
	return p
}

// Recommendation returns the cached course recommendation, if any.
func (p *Profile) Recommendation() Recommendation {
	return Recommendation{
		CourseIDs:   p.RecommendedCourseIDs,
		Title:       p.RecommendedTitle,
		Description: p.RecommendedDescription,
		Skills:      p.RecommendedSkills,
	}
}

func (p *Profile) HasBookmark(jobID string) bool {
	for _, id := range p.BookmarkedJobs {
		if id == jobID {
			return true
		}
	}
	return false
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	// Put creates the record, or refreshes email, name and image on an
	// existing one. Role-specific fields are only written on create. It fails
	// with ErrRoleConflict when the stored role differs.
	Put(ctx context.Context, profile *Profile) error
	UpdateQuizAnswers(ctx context.Context, id string, answers []string) error
	UpdateRecommendation(ctx context.Context, id string, rec Recommendation) error
	UpdateResumeURL(ctx context.Context, id string, url string) error
	UpdateProfileImage(ctx context.Context, id string, url string) error
	AddBookmark(ctx context.Context, id string, jobID string) error
	RemoveBookmark(ctx context.Context, id string, jobID string) error
}
