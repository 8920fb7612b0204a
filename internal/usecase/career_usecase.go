package usecase

import (
	"context"
	"errors"
	"fmt"
	"skillsprint/internal/aiclient"
	"skillsprint/internal/domain"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
)

// CareerQuiz is the fixed three-step interest quiz.
var CareerQuiz = []domain.QuizQuestion{
	{
		Question: "What area of technology interests you most?",
		Options: []string{
			"Frontend Development (User Interfaces)",
			"Backend Development (Server & Databases)",
			"Mobile App Development",
			"Artificial Intelligence & Machine Learning",
			"Data Science & Analytics",
			"Cybersecurity",
			"DevOps & Cloud",
		},
	},
	{
		Question: "What type of work environment do you prefer?",
		Options: []string{
			"Collaborative team projects",
			"Independent problem-solving",
			"Fast-paced startup environment",
			"Structured corporate setting",
			"Remote/flexible work",
			"Research-focused environment",
		},
	},
	{
		Question: "Which of these activities sounds most appealing?",
		Options: []string{
			"Designing beautiful user interfaces",
			"Solving complex algorithms",
			"Analyzing data patterns",
			"Protecting systems from threats",
			"Building scalable infrastructure",
			"Creating mobile experiences",
		},
	},
}

// Recommender asks the AI backend for matching courses.
type Recommender interface {
	RecommendCourses(ctx context.Context, interests []string, catalog []domain.CourseSummary) (domain.Recommendation, error)
}

type careerUsecase struct {
	profiles    domain.ProfileRepository
	courses     domain.CourseRepository
	recommender Recommender
}

func NewCareerUsecase(profiles domain.ProfileRepository, courses domain.CourseRepository, recommender Recommender) domain.CareerUsecase {
	return &careerUsecase{
		profiles:    profiles,
		courses:     courses,
		recommender: recommender,
	}
}

// View shows the quiz until all answers are stored. With answers it reuses
// the cached recommendation, asking the backend only when none is cached.
func (u *careerUsecase) View(ctx context.Context, studentID string) (*domain.CareerPath, error) {
	profile, err := u.profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(profile.CareerQuizAnswers) != len(CareerQuiz) {
		return quizView(), nil
	}

	catalog, err := u.catalog(ctx)
	if err != nil {
		return nil, err
	}

	rec := profile.Recommendation()
	if rec.Empty() {
		rec = u.recommend(ctx, studentID, profile.CareerQuizAnswers, catalog)
	}
	return resultView(profile.CareerQuizAnswers, rec, catalog), nil
}

func (u *careerUsecase) SubmitAnswers(ctx context.Context, studentID string, answers []string) (*domain.CareerPath, error) {
	if len(answers) != len(CareerQuiz) {
		return nil, apperror.BadRequest(fmt.Sprintf("Exactly %d answers are required", len(CareerQuiz)))
	}
	for i, a := range answers {
		if !validOption(CareerQuiz[i], a) {
			return nil, apperror.BadRequest(fmt.Sprintf("Answer %d is not one of the offered options", i+1))
		}
	}

	if err := u.profiles.UpdateQuizAnswers(ctx, studentID, answers); err != nil {
		return nil, storeError(err)
	}

	catalog, err := u.catalog(ctx)
	if err != nil {
		return nil, err
	}
	rec := u.recommend(ctx, studentID, answers, catalog)
	return resultView(answers, rec, catalog), nil
}

func (u *careerUsecase) Refresh(ctx context.Context, studentID string) (*domain.CareerPath, error) {
	profile, err := u.profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(profile.CareerQuizAnswers) != len(CareerQuiz) {
		return quizView(), nil
	}

	catalog, err := u.catalog(ctx)
	if err != nil {
		return nil, err
	}
	rec := u.recommend(ctx, studentID, profile.CareerQuizAnswers, catalog)
	return resultView(profile.CareerQuizAnswers, rec, catalog), nil
}

func (u *careerUsecase) Reset(ctx context.Context, studentID string) error {
	if err := u.profiles.UpdateQuizAnswers(ctx, studentID, []string{}); err != nil {
		return storeError(err)
	}
	return nil
}

// recommend never fails: a backend error yields an empty recommendation
// with the default title, which is not cached.
func (u *careerUsecase) recommend(ctx context.Context, studentID string, interests []string, catalog []domain.Course) domain.Recommendation {
	summaries := make([]domain.CourseSummary, 0, len(catalog))
	for _, c := range catalog {
		summaries = append(summaries, domain.CourseSummary{ID: c.ID, Description: c.Description})
	}

	rec, err := u.recommender.RecommendCourses(ctx, interests, summaries)
	if err != nil {
		logger.Log.Warn("Course recommendation failed", "user_id", studentID, "error", err)
		return domain.Recommendation{
			CourseIDs: []string{},
			Title:     aiclient.DefaultRecommendationTitle,
			Skills:    []string{},
		}
	}

	if err := u.profiles.UpdateRecommendation(ctx, studentID, rec); err != nil {
		logger.Log.Error("Failed to cache recommendation", "user_id", studentID, "error", err)
	}
	return rec
}

func (u *careerUsecase) profile(ctx context.Context, studentID string) (*domain.Profile, error) {
	p, err := u.profiles.GetByID(ctx, studentID)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

func (u *careerUsecase) catalog(ctx context.Context) ([]domain.Course, error) {
	courses, err := u.courses.FetchAll(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("fetch courses: %w", err))
	}
	return courses, nil
}

func quizView() *domain.CareerPath {
	return &domain.CareerPath{
		Questions: CareerQuiz,
		Answers:   []string{},
		ShowQuiz:  true,
		Courses:   []domain.Course{},
	}
}

func resultView(answers []string, rec domain.Recommendation, catalog []domain.Course) *domain.CareerPath {
	return &domain.CareerPath{
		Answers:        answers,
		Recommendation: &rec,
		Courses:        filterCourses(catalog, rec.CourseIDs),
	}
}

// filterCourses keeps catalog order.
func filterCourses(catalog []domain.Course, ids []string) []domain.Course {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []domain.Course{}
	for _, c := range catalog {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func validOption(q domain.QuizQuestion, answer string) bool {
	for _, o := range q.Options {
		if o == answer {
			return true
		}
	}
	return false
}

func storeError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound("Profile not found")
	}
	return apperror.Internal(err)
}
