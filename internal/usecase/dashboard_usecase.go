package usecase

import (
	"context"
	"skillsprint/internal/domain"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
)

const recentJobsLimit = 3

type dashboardUsecase struct {
	courses domain.CourseRepository
	jobs    domain.JobRepository
}

func NewDashboardUsecase(courses domain.CourseRepository, jobs domain.JobRepository) domain.DashboardUsecase {
	return &dashboardUsecase{courses: courses, jobs: jobs}
}

// Student renders the cached recommendation. A catalog failure leaves the
// course list empty rather than failing the view.
func (u *dashboardUsecase) Student(ctx context.Context, profile *domain.Profile) (*domain.StudentDashboard, error) {
	d := &domain.StudentDashboard{
		Name:                profile.Name,
		RecommendationTitle: profile.RecommendedTitle,
		RecommendedCourses:  []domain.Course{},
		RecommendedSkills:   nonNilStrings(profile.RecommendedSkills),
		BookmarkCount:       len(profile.BookmarkedJobs),
	}
	if len(profile.RecommendedCourseIDs) == 0 {
		return d, nil
	}

	catalog, err := u.courses.FetchAll(ctx)
	if err != nil {
		logger.Log.Error("Failed to fetch courses", "user_id", profile.ID, "error", err)
		return d, nil
	}
	d.RecommendedCourses = filterCourses(catalog, profile.RecommendedCourseIDs)
	return d, nil
}

func (u *dashboardUsecase) Recruiter(ctx context.Context, profile *domain.Profile) (*domain.RecruiterDashboard, error) {
	jobs, err := u.jobs.FetchByRecruiter(ctx, profile.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	d := &domain.RecruiterDashboard{
		Name:       profile.Name,
		Company:    profile.Company,
		JobCount:   len(jobs),
		RecentJobs: jobs,
	}
	for _, j := range jobs {
		d.ApplicantCount += len(j.Applicants)
	}
	if len(d.RecentJobs) > recentJobsLimit {
		d.RecentJobs = d.RecentJobs[:recentJobsLimit]
	}
	return d, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
