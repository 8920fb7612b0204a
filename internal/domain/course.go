package domain

import "context"

type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Level       string   `json:"level"`
	Skills      []string `json:"skills"`
	URL         string   `json:"url"`
}

// CourseSummary is the slice of the catalog sent to the AI backend.
type CourseSummary struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type Recommendation struct {
	CourseIDs   []string `json:"recommended_course_ids"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

func (r Recommendation) Empty() bool {
	return len(r.CourseIDs) == 0
}

type CourseRepository interface {
	FetchAll(ctx context.Context) ([]Course, error)
}

// QuizQuestion is one step of the career path quiz.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// CareerPath is what the career path view renders.
type CareerPath struct {
	Questions      []QuizQuestion  `json:"questions,omitempty"`
	Answers        []string        `json:"answers"`
	ShowQuiz       bool            `json:"show_quiz"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Courses        []Course        `json:"courses"`
}

type CareerUsecase interface {
	View(ctx context.Context, studentID string) (*CareerPath, error)
	SubmitAnswers(ctx context.Context, studentID string, answers []string) (*CareerPath, error)
	Refresh(ctx context.Context, studentID string) (*CareerPath, error)
	Reset(ctx context.Context, studentID string) error
}
