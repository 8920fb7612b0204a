package domain

import "context"

type StudentDashboard struct {
	Name                string   `json:"name"`
	RecommendationTitle string   `json:"recommendation_title,omitempty"`
	RecommendedCourses  []Course `json:"recommended_courses"`
	RecommendedSkills   []string `json:"recommended_skills"`
	BookmarkCount       int      `json:"bookmark_count"`
}

type RecruiterDashboard struct {
	Name           string `json:"name"`
	Company        string `json:"company"`
	RecentJobs     []Job  `json:"recent_jobs"`
	JobCount       int    `json:"job_count"`
	ApplicantCount int    `json:"applicant_count"`
}

type DashboardUsecase interface {
	Student(ctx context.Context, profile *Profile) (*StudentDashboard, error)
	Recruiter(ctx context.Context, profile *Profile) (*RecruiterDashboard, error)
}
